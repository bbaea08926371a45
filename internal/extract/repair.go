// Package extract provides tolerant JSON extraction from raw LLM output.
// Every extraction-LLM call site in the narrative engine (NPC mention
// mining, character-moment extraction, query decomposition, recall-agent
// final answers) routes its raw completion text through Robust before
// unmarshalling, since models reliably wrap JSON in markdown fences and
// occasionally emit a stray trailing sentence after the payload.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Robust extracts a JSON value from raw LLM output and returns it as
// json.RawMessage, ready for json.Unmarshal into a caller-defined struct.
// It tries, in order:
//  1. stripping a surrounding markdown code fence and parsing directly
//  2. parsing the trimmed text directly
//  3. scanning for the first balanced {...} or [...] region, honoring
//     string-escaping, and parsing that
//
// Returns an error only if none of the three strategies produce valid JSON.
func Robust(raw string) (json.RawMessage, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, fmt.Errorf("extract: empty input")
	}

	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		if region, ok := balancedRegion(cleaned, pair[0], pair[1]); ok {
			if json.Valid([]byte(region)) {
				return json.RawMessage(region), nil
			}
		}
	}

	return nil, fmt.Errorf("extract: no valid JSON found in response")
}

// stripCodeFence removes a surrounding ```json ... ``` or ``` ... ``` block.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// balancedRegion returns the substring from the first occurrence of open to
// its matching close, tracking nested delimiters and skipping over
// characters inside JSON string literals (including escaped quotes) so that
// braces or brackets embedded in string values don't throw off the count.
func balancedRegion(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
