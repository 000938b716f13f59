package cmd

import (
	"encoding/json"
	"io"
	"strings"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseValue reads a command-line value as JSON when it parses (numbers,
// booleans, null, lists) and as a plain string otherwise.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// parseDetail splits a key=value flag.
func parseDetail(s string) (string, any, bool) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return "", nil, false
	}
	return k, parseValue(v), true
}
