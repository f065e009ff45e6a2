package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	sanRegex        = regexp.MustCompile(`[\\/:*?"><|\x00-\x1f]`)
	titleCharRegex  = regexp.MustCompile(`[^\w\s-]`)
	titleSpaceRegex = regexp.MustCompile(`\s+`)
)

// Sanitise cleans a filename by replacing characters that are invalid on
// common filesystems.
func Sanitise(filename string) string {
	san := sanRegex.ReplaceAllString(filename, "_")
	return strings.TrimRight(san, " .\t")
}

// CleanTitle turns a media title into a file stem: every character other
// than letters, digits, underscore, whitespace or hyphen becomes "_", then
// whitespace runs become a single "_".
func CleanTitle(title string) string {
	if title == "" {
		title = "video"
	}
	clean := titleCharRegex.ReplaceAllString(title, "_")
	return titleSpaceRegex.ReplaceAllString(clean, "_")
}

// MakeDirs creates directories recursively.
func MakeDirs(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file (not directory) exists at the given path.
func FileExists(path string) (bool, error) {
	f, err := os.Stat(path)
	if err == nil {
		return !f.IsDir(), nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ValidatePath checks that a path does not contain dangerous characters.
func ValidatePath(path string) error {
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains invalid characters")
	}
	return nil
}

// UniquePath returns dir/name, or dir/"name (n).ext" for the first n that
// does not collide with an existing file.
func UniquePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	exists, err := FileExists(candidate)
	if err != nil || !exists {
		return candidate, err
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; n < 10000; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		exists, err = FileExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
