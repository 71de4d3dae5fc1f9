package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var repeatedUnderscores = regexp.MustCompile(`_+`)

// CleanStringForFilename cleans a string for safe use in filenames
func CleanStringForFilename(input string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-':
			return '_'
		case r == '.':
			return '.'
		default:
			return -1 // remove
		}
	}, input)

	clean = repeatedUnderscores.ReplaceAllString(clean, "_")
	clean = strings.Trim(clean, "_")

	if clean == "" {
		clean = "file"
	}
	if len(clean) > 100 {
		clean = clean[:100]
	}
	return clean
}

// FileExtension returns the lower-cased extension of name without the dot,
// or "bin" when name has none.
func FileExtension(name string) string {
	ext := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(filepath.Ext(name)))
	if ext == "" {
		return "bin"
	}
	return ext
}
