package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/samvad-hq/position-parser/internal/domain"
)

// stubCompleter returns a canned reply and records the prompt it received.
type stubCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.system, s.user = system, user
	return s.reply, s.err
}

const reply = `{"politician_name":"Jane Doe","positions":[{"stance":"For expanding transit","source_urls":["https://a.com"]}]}`

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	stub := &stubCompleter{reply: "Here you go:\n```json\n" + reply + "\n```\nThanks"}
	res, err := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "text"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.PoliticianName == nil || *res.PoliticianName != "Jane Doe" {
		t.Fatalf("unexpected name %v", res.PoliticianName)
	}
	if len(res.Positions) != 1 || res.Positions[0].Stance != "For expanding transit" {
		t.Fatalf("unexpected positions %#v", res.Positions)
	}
	if stub.system != SystemPrompt {
		t.Fatalf("system prompt not sent")
	}
}

func TestAnalyzeParsesBareJSON(t *testing.T) {
	stub := &stubCompleter{reply: reply}
	res, err := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "text"})
	if err != nil || len(res.Positions) != 1 {
		t.Fatalf("unexpected result %#v err=%v", res, err)
	}
}

func TestAnalyzeDegradesOnFreeText(t *testing.T) {
	stub := &stubCompleter{reply: "I could not find any positions on these pages."}
	res, err := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "text"})
	if err != nil {
		t.Fatalf("parse failures must not be errors: %v", err)
	}
	if res.PoliticianName != nil {
		t.Fatalf("expected null name")
	}
	if res.Positions == nil || len(res.Positions) != 0 {
		t.Fatalf("expected empty positions array, got %#v", res.Positions)
	}
	if len(res.Warnings) != 1 || !strings.HasPrefix(res.Warnings[0], "Failed to parse model response as JSON: ") {
		t.Fatalf("unexpected warnings %#v", res.Warnings)
	}
	if strings.Contains(res.Warnings[0], "could not find") {
		t.Fatalf("raw model text leaked into warning")
	}
}

func TestAnalyzeCoercesMistypedFields(t *testing.T) {
	stub := &stubCompleter{reply: "```json\n" +
		`{"politician_name": "X", "positions": [` +
		`{"stance": "For Y", "source_urls": "https://a.com"},` +
		`"stray string",` +
		`{"stance": "Against Z", "source_urls": ["https://b.com", 7], "note": null}` +
		`], "warnings": "model hedged"}` + "\n```"}
	res, err := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "text"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.PoliticianName == nil || *res.PoliticianName != "X" {
		t.Fatalf("unexpected name %v", res.PoliticianName)
	}
	if len(res.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %#v", res.Positions)
	}
	first, second := res.Positions[0], res.Positions[1]
	if first.Stance != "For Y" || len(first.SourceURLs) != 1 || first.SourceURLs[0] != "https://a.com" {
		t.Fatalf("string source_urls not coerced: %#v", first)
	}
	if second.Stance != "Against Z" || len(second.SourceURLs) != 2 || second.SourceURLs[1] != "7" || second.Note != nil {
		t.Fatalf("unexpected second position %#v", second)
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "model hedged" {
		t.Fatalf("unexpected warnings %#v", res.Warnings)
	}
}

func TestAnalyzeDegradesOnNonObjectJSON(t *testing.T) {
	stub := &stubCompleter{reply: `["For Y", "Against Z"]`}
	res, err := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "text"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Positions) != 0 || len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "expected a JSON object") {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestAnalyzeDegradesOnTrailingGarbage(t *testing.T) {
	stub := &stubCompleter{reply: `{"positions": []} and more`}
	res, _ := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "text"})
	if len(res.Warnings) != 1 || !strings.HasPrefix(res.Warnings[0], "Failed to parse model response as JSON: ") {
		t.Fatalf("unexpected warnings %#v", res.Warnings)
	}
}

func TestAnalyzeKeepsModelWarnings(t *testing.T) {
	stub := &stubCompleter{reply: `{"politician_name":null,"positions":[],"warnings":["thin source"]}`}
	res, _ := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "x"})
	if len(res.Warnings) != 1 || res.Warnings[0] != "thin source" {
		t.Fatalf("unexpected warnings %#v", res.Warnings)
	}
}

func TestAnalyzeWrapsCompletionErrors(t *testing.T) {
	cause := errors.New("upstream 529")
	stub := &stubCompleter{err: cause}
	_, err := New(stub, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "x"})
	if !errors.Is(err, ErrCompletion) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped completion error, got %v", err)
	}

	_, err = New(nil, nil).Analyze(context.Background(), domain.ContentMap{"https://a.com": "x"})
	if !errors.Is(err, ErrCompletion) {
		t.Fatalf("expected ErrCompletion without completer, got %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":      `{"a":1}`,
		"```\n{\"a\":{\"b\":2}}```":    `{"a":{"b":2}}`,
		"prefix ```json {\"a\":1} ```": `{"a":1}`,
		`{"a":1}`:                      `{"a":1}`,
		"```json\n[1,2]\n```":          "```json\n[1,2]\n```",
	}
	for in, want := range cases {
		if got := ExtractJSON(in); got != want {
			t.Fatalf("ExtractJSON(%q) = %q want %q", in, got, want)
		}
	}
}

func TestBuildUserMessageFormat(t *testing.T) {
	msg, _ := BuildUserMessage(domain.ContentMap{
		"https://b.com": "beta",
		"https://a.com": "alpha",
	}, nil)
	want := "Source URLs: https://a.com, https://b.com\n\nContent:\n" +
		"=== Source: https://a.com ===\nalpha\n\n=== Source: https://b.com ===\nbeta"
	if msg != want {
		t.Fatalf("unexpected message:\n%q\nwant\n%q", msg, want)
	}
}

func TestBuildUserMessageTruncatesPerSource(t *testing.T) {
	msg, _ := BuildUserMessage(domain.ContentMap{
		"https://a.com": strings.Repeat("é", MaxSourceChars+100),
	}, nil)
	body := msg[strings.Index(msg, "===\n")+4:]
	if n := utf8.RuneCountInString(body); n != MaxSourceChars {
		t.Fatalf("expected %d chars, got %d", MaxSourceChars, n)
	}
	if strings.Contains(msg, "[Content truncated") {
		t.Fatalf("single capped source should not hit the overall cap")
	}
}

func TestBuildUserMessageCapsTotal(t *testing.T) {
	content := domain.ContentMap{}
	for i := 0; i < 4; i++ {
		content[fmt.Sprintf("https://site%d.com", i)] = strings.Repeat("x", MaxSourceChars)
	}
	msg, size := BuildUserMessage(content, nil)
	if size <= MaxPayloadChars {
		t.Fatalf("expected combined size above cap, got %d", size)
	}
	if !strings.HasSuffix(msg, truncationMarker) {
		t.Fatalf("expected truncation marker")
	}
	combined := strings.TrimSuffix(msg[strings.Index(msg, "Content:\n")+len("Content:\n"):], truncationMarker)
	if n := utf8.RuneCountInString(combined); n != MaxPayloadChars {
		t.Fatalf("expected combined length %d, got %d", MaxPayloadChars, n)
	}
}

func TestFailureMessage(t *testing.T) {
	timeout := FailureMessage(fmt.Errorf("%w: %w", ErrCompletion, context.DeadlineExceeded))
	if !strings.Contains(timeout, "took too long") {
		t.Fatalf("unexpected timeout message %q", timeout)
	}
	generic := FailureMessage(errors.New("secret internal detail"))
	if !strings.HasPrefix(generic, "Analysis failed: ") || strings.Contains(generic, "secret") {
		t.Fatalf("unexpected generic message %q", generic)
	}
}
