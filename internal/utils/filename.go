package utils

import (
	"regexp"
	"strings"
)

const maxFilenameLength = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Any run of whitespace collapses to one space
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a book name into a file name without extension.
// Path separators and characters rejected by common filesystems are
// removed, whitespace is collapsed, "#" is dropped and square brackets become
// parentheses. The result is at most 200 bytes and never empty.
func SanitizeFilename(filename string) string {
	// Whitespace first so that newlines and tabs survive as separators.
	filename = whitespaceRuns.ReplaceAllString(filename, " ")
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = strings.ReplaceAll(filename, "#", "")
	filename = whitespaceRuns.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	if len(filename) > maxFilenameLength {
		filename = strings.TrimSpace(truncateUTF8(filename, maxFilenameLength))
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
