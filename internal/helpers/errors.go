package helpers

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

var (
	// ErrOpenTextFile indicates opening a text file failed.
	ErrOpenTextFile = errors.New("failed to open text file")
	// ErrScanTextFile indicates scanner iteration over a text file failed.
	ErrScanTextFile = errors.New("failed to scan text file")
)

// ReadTxtFile reads non-empty lines from a text file. Lines starting with
// "#" are comments.
func ReadTxtFile(path string) ([]string, error) {
	var lines []string
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrOpenTextFile, path, err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	if scanner.Err() != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrScanTextFile, path, scanner.Err())
	}
	return lines, nil
}

// ProcessUrls expands .txt files into the URLs they list and drops duplicates,
// keeping first-seen order. Media URLs are case-sensitive, so comparison is exact.
func ProcessUrls(urls []string) ([]string, error) {
	var (
		processed []string
		txtPaths  []string
	)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u != "" && !slices.Contains(processed, u) {
			processed = append(processed, u)
		}
	}
	for _, u := range urls {
		if strings.HasSuffix(strings.ToLower(u), ".txt") {
			if slices.Contains(txtPaths, u) {
				continue
			}
			txtLines, err := ReadTxtFile(u)
			if err != nil {
				return nil, err
			}
			for _, line := range txtLines {
				add(line)
			}
			txtPaths = append(txtPaths, u)
			continue
		}
		add(u)
	}
	return processed, nil
}
