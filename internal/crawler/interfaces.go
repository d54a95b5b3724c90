package crawler

import (
	"context"

	"github.com/samvad-hq/position-parser/internal/domain"
)

// PageFetcher retrieves one URL and reports either its text or a classified failure.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) domain.ScrapeOutcome
}

// BatchScraper fetches a set of URLs and splits the outcomes into content and errors.
type BatchScraper interface {
	ScrapeAll(ctx context.Context, urls []string) (domain.ContentMap, []domain.ScrapeError)
}
