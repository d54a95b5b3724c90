// Package analyzer turns scraped page text into structured policy positions.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/internal/logger"
	"github.com/samvad-hq/position-parser/internal/metrics"
)

const (
	// MaxSourceChars caps the text taken from any one page.
	MaxSourceChars = 50000
	// MaxPayloadChars caps the combined content sent to the model.
	MaxPayloadChars = 150000

	truncationMarker = "\n\n[Content truncated due to length]"
	rawLogChars      = 500
)

// ErrCompletion marks a failure of the model call itself, as opposed to an unparseable reply.
var ErrCompletion = errors.New("completion failed")

var fencedObject = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*\\})\\s*```")

// Analyzer assembles the prompt, calls the Completer and recovers JSON from the reply.
type Analyzer struct {
	completer Completer
	log       logger.Logger
}

// New returns an analyzer. A nil completer makes every Analyze call fail with ErrCompletion.
func New(completer Completer, log logger.Logger) *Analyzer {
	return &Analyzer{completer: completer, log: logger.Ensure(log)}
}

// Analyze extracts positions from content. Unparseable replies produce a degraded
// result rather than an error.
func (a *Analyzer) Analyze(ctx context.Context, content domain.ContentMap) (domain.AnalysisResult, error) {
	if a.completer == nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: no completer configured", ErrCompletion)
	}

	user, combinedChars := BuildUserMessage(content, a.log)
	a.log.InfoObj("requesting analysis", "analysis_request", map[string]any{
		"chars": combinedChars,
		"urls":  len(content),
	})

	start := time.Now()
	text, err := a.completer.Complete(ctx, SystemPrompt, user)
	metrics.ObserveAnalysis(time.Since(start))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	return a.parse(text), nil
}

func (a *Analyzer) parse(text string) domain.AnalysisResult {
	res, skipped, err := decodeReply(ExtractJSON(text))
	if err != nil {
		a.log.ErrorObj("model reply is not valid JSON", "parse_error", err.Error())
		a.log.DebugObj("raw model reply", "raw", truncateRunes(text, rawLogChars))
		return domain.AnalysisResult{
			Positions: []domain.Position{},
			Warnings:  []string{"Failed to parse model response as JSON: " + err.Error()},
		}
	}

	name := "unknown"
	if res.PoliticianName != nil {
		name = *res.PoliticianName
	}
	a.log.InfoObj("analysis parsed", "analysis_result", map[string]any{
		"politician_name": name,
		"positions":       len(res.Positions),
		"skipped":         skipped,
	})
	return res.Normalize()
}

// ExtractJSON returns the object inside a ``` or ```json fence when present, else text unchanged.
func ExtractJSON(text string) string {
	if m := fencedObject.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// BuildUserMessage renders content as the user turn and reports the combined content size
// in characters before the overall cap is applied.
func BuildUserMessage(content domain.ContentMap, log logger.Logger) (string, int) {
	urls := make([]string, 0, len(content))
	for u := range content {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	sections := make([]string, 0, len(urls))
	for _, u := range urls {
		text := truncateRunes(content[u], MaxSourceChars)
		sections = append(sections, "=== Source: "+u+" ===\n"+text)
	}
	combined := strings.Join(sections, "\n\n")

	size := utf8.RuneCountInString(combined)
	if size > MaxPayloadChars {
		logger.Ensure(log).WarnObj("content truncated", "truncation", map[string]any{
			"from": size,
			"to":   MaxPayloadChars,
		})
		combined = truncateRunes(combined, MaxPayloadChars) + truncationMarker
	}

	return "Source URLs: " + strings.Join(urls, ", ") + "\n\nContent:\n" + combined, size
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
