package publishers

import (
	"time"

	"github.com/samvad-hq/position-parser/internal/domain"
)

// Event announces a freshly computed analysis to downstream sinks.
type Event struct {
	Fingerprint    string    `json:"fingerprint"`
	URLs           []string  `json:"urls"`
	PoliticianName *string   `json:"politician_name"`
	PositionsCount int       `json:"positions_count"`
	WarningsCount  int       `json:"warnings_count"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewEvent summarizes res for the URL set identified by fingerprint.
func NewEvent(fingerprint string, urls []string, res domain.AnalysisResult) Event {
	cp := make([]string, len(urls))
	copy(cp, urls)
	return Event{
		Fingerprint:    fingerprint,
		URLs:           cp,
		PoliticianName: res.PoliticianName,
		PositionsCount: len(res.Positions),
		WarningsCount:  len(res.Warnings),
		CompletedAt:    time.Now().UTC(),
	}
}
