package store

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/pmagent/internal/fsutil"
)

const metaVersion = "1"

// meta is the sidecar persisted next to the store file. It carries the id
// counter and a digest of the last store bytes pmagent wrote.
type meta struct {
	Version  string `json:"version"`
	NextID   int    `json:"next_id"`
	Checksum string `json:"checksum"`
}

// MetaPath returns the sidecar path for a store file: data/tasks.json ->
// data/tasks.meta.json
func MetaPath(storePath string) string {
	ext := filepath.Ext(storePath)
	return strings.TrimSuffix(storePath, ext) + ".meta.json"
}

// checksum returns the hex blake3 digest of data
func checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// readMeta loads the sidecar. A missing sidecar is the zero meta.
func readMeta(path string) (meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return meta{}, nil
		}
		return meta{}, err
	}
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return meta{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

func writeMeta(path string, m meta) error {
	m.Version = metaVersion
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}
