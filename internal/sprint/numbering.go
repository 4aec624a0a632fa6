package sprint

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileName returns the report file name of sprint n
func FileName(n int) string {
	return fmt.Sprintf("sprint_%d.json", n)
}

// NextSprintNumber returns one more than the highest n among dir's
// sprint_<n>.json files, or 1 when there are none. Files whose suffix is not
// an integer are ignored. A missing dir counts as empty.
func NextSprintNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 1, nil
		}
		return 0, fmt.Errorf("read sprint directory: %w", err)
	}

	highest := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := parseSprintFileName(e.Name())
		if ok && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func parseSprintFileName(name string) (int, bool) {
	if !strings.HasPrefix(name, "sprint_") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "sprint_"), ".json")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
