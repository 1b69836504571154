package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameLen = 255

// SanitizeFileName makes a client-supplied file name safe to log: path
// separators and control characters are replaced and traversal is rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameLen {
		s = s[:maxFileNameLen]
	}
	return s, nil
}
