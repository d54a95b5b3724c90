package crawler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/internal/logger"
)

// Service fans a batch of URLs out to a PageFetcher.
type Service struct {
	fetcher PageFetcher
	log     logger.Logger
}

// NewService wires a batch scraper around the page fetcher.
func NewService(fetcher PageFetcher, log logger.Logger) *Service {
	log = logger.Ensure(log)
	if fetcher == nil {
		fetcher = NewFetcher(nil, DefaultFetchTimeout, log)
	}
	return &Service{fetcher: fetcher, log: log}
}

// ScrapeAll normalizes and fetches every URL concurrently and waits for all of them.
// Errors come back in input order; duplicate URLs resolve to the later entry.
func (s *Service) ScrapeAll(ctx context.Context, urls []string) (domain.ContentMap, []domain.ScrapeError) {
	normalized := NormalizeAll(urls)
	outcomes := make([]domain.ScrapeOutcome, len(normalized))

	var g errgroup.Group
	for i, u := range normalized {
		g.Go(func() error {
			outcomes[i] = s.fetchOne(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	content := make(domain.ContentMap, len(outcomes))
	var errs []domain.ScrapeError
	for _, o := range outcomes {
		if o.OK() && o.Text != "" {
			content[o.URL] = o.Text
			continue
		}
		if o.Failure == nil {
			o = domain.Failure(o.URL, domain.ErrEmptyContent, Domain(o.URL))
		}
		errs = append(errs, *o.Failure)
	}

	s.log.InfoObj("scrape batch completed", "scrape_batch", map[string]any{
		"requested": len(normalized),
		"succeeded": len(content),
		"failed":    len(errs),
	})
	return content, errs
}

// fetchOne isolates a single fetch so a panic degrades to an unknown failure.
func (s *Service) fetchOne(ctx context.Context, u string) (out domain.ScrapeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorObj("page fetch panicked", "fetch_panic", map[string]any{
				"url":   u,
				"panic": fmt.Sprint(r),
			})
			out = domain.Failure(u, domain.ErrUnknown, Domain(u))
		}
	}()
	out = s.fetcher.Fetch(ctx, u)
	if out.URL == "" {
		out.URL = u
	}
	return out
}
