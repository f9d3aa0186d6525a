package llm

import (
	"errors"
	"strings"
)

// Models offer no structured-output guarantee, so replies are scanned for
// the first balanced JSON object or array and everything around it is
// ignored. String literals are honored so braces inside values don't
// unbalance the scan.

var ErrNoJSON = errors.New("no JSON value found in text")

// FirstJSONObject returns the first balanced {...} substring of text.
func FirstJSONObject(text string) (string, error) {
	return firstBalanced(text, '{', '}')
}

// FirstJSONArray returns the first balanced [...] substring of text.
func FirstJSONArray(text string) (string, error) {
	return firstBalanced(text, '[', ']')
}

func firstBalanced(text string, open, closing byte) (string, error) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSON
}
