package gateway

import (
	"encoding/json"
	"regexp"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
)

// jsonArrayPattern matches the first bracketed span, shortest match
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*?\]`)

// ExtractJSONArray returns the first "[...]" span in text. Models often wrap
// JSON in prose or code fences.
func ExtractJSONArray(text string) (string, bool) {
	m := jsonArrayPattern.FindString(text)
	return m, m != ""
}

// DecodeArray extracts the first JSON array in text and decodes it into v.
// Failures are GATEWAY-004 errors.
func DecodeArray(text string, v any) error {
	raw, ok := ExtractJSONArray(text)
	if !ok {
		return agenterrors.New(agenterrors.ErrCodeGatewayMalformed, "response contains no JSON array")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return agenterrors.Wrap(agenterrors.ErrCodeGatewayMalformed, "response array is not valid JSON", err)
	}
	return nil
}
