package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// MaxURLs bounds how many URLs one run may carry.
const MaxURLs = 4

// Request validation failures. Their messages are shown to clients verbatim.
var (
	ErrNoURLs      = errors.New("At least one URL is required")
	ErrTooManyURLs = fmt.Errorf("Maximum %d URLs allowed", MaxURLs)
	ErrNoValidURLs = errors.New("At least one valid URL is required")
)

// ValidateURLs enforces the 1..MaxURLs bound on raw, then trims entries and drops the
// blank ones. The bound applies before trimming.
func ValidateURLs(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, ErrNoURLs
	}
	if len(raw) > MaxURLs {
		return nil, ErrTooManyURLs
	}
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, ErrNoValidURLs
	}
	return urls, nil
}
