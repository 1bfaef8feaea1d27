package vmservice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var ErrNotFound = errors.New("vmservice: no VM service URL found")

var announceRE = regexp.MustCompile(`Dart VM Service.*?at:\s*(http://[^\s]+)`)

// Source lists where Discover looks for the VM service URL, in order.
type Source struct {
	URL     string // used as is when set
	URLFile string // file holding the URL on its own
	LogGlob string // log files scanned for the VM service announcement
}

// Discover resolves the VM service URL from src. Missing or unreadable files
// are skipped.
func Discover(src Source) (string, error) {
	if u := strings.TrimSpace(src.URL); u != "" {
		return u, nil
	}
	if src.URLFile != "" {
		if data, err := os.ReadFile(src.URLFile); err == nil {
			if u := strings.TrimSpace(string(data)); u != "" {
				return u, nil
			}
		}
	}
	if src.LogGlob != "" {
		paths, err := filepath.Glob(src.LogGlob)
		if err != nil {
			return "", fmt.Errorf("vmservice: log glob: %w", err)
		}
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			if u, ok := FindAnnouncement(data); ok {
				return u, nil
			}
		}
	}
	return "", ErrNotFound
}

// FindAnnouncement extracts the URL from the first VM service announcement
// line in log output.
func FindAnnouncement(log []byte) (string, bool) {
	m := announceRE.FindSubmatch(log)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
