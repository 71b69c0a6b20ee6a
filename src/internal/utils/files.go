package utils

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func CloseOrWarn(file io.Closer) {
	if err := file.Close(); err != nil {
		log.Warnf("Failed to close file: %v", err)
	}
}

// IsRegularFile reports whether path names an existing regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// ScanLines calls fn for every meaningful line of r, in order. Lines are
// trimmed; blank lines and lines starting with '#' are skipped. A UTF-8 or
// UTF-16 byte order mark selects the decoding, UTF-8 otherwise.
func ScanLines(r io.Reader, fn func(line string)) error {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(line)
	}
	return scanner.Err()
}

// ReadLines opens path and returns its meaningful lines (see ScanLines).
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer CloseOrWarn(f)

	var lines []string
	if err := ScanLines(f, func(line string) {
		lines = append(lines, line)
	}); err != nil {
		return nil, err
	}
	return lines, nil
}
