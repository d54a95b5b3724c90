package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/position-parser/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: topic
    type: SNS
    sns:
      topic_arn: " arn:aws:sns:us-east-1:123:results "
      region: us-east-1
  - id: gcp
    type: pubsub
    pubsub:
      project_id: proj
      topic: results
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "topic" || enabled[1].ID != "gcp" {
		t.Fatalf("unexpected enabled set %#v", enabled)
	}
	topic, ok := reg.ByID("topic")
	if !ok || topic.Type != TypeSNS || topic.SNS.TopicARN != "arn:aws:sns:us-east-1:123:results" {
		t.Fatalf("expected sanitized sns config, got %#v", topic)
	}
	if http1, _ := reg.ByID("http1"); http1.HTTP.Method != "POST" || http1.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("expected http defaults, got %#v", http1.HTTP)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[{"id":"q","type":"sqs","sqs":{"uri":"https://sqs/q","region":"eu-west-1"}}]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 1 || reg.All()[0].SQS.Region != "eu-west-1" {
		t.Fatalf("unexpected registry %#v", reg.All())
	}
}

func TestLoadRegistryRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"dup.yaml":     "publishers:\n  - {id: a, type: http, http: {url: x}}\n  - {id: a, type: http, http: {url: y}}\n",
		"empty.yaml":   "publishers: []\n",
		"unknown.yaml": "publishers:\n  - {id: a, type: kafka}\n",
		"broken.json":  "{not json",
		"bad.toml":     "publishers = []",
	}
	for name, body := range cases {
		if _, err := LoadRegistry(writeFile(t, name, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadRegistry("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	bad := []PublisherConfig{
		{Type: TypeHTTP},
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "r"}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "p"}},
	}
	for _, cfg := range bad {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestNewEventSummarizesResult(t *testing.T) {
	name := "Jane"
	urls := []string{"https://a.com"}
	evt := NewEvent("fp", urls, domain.AnalysisResult{
		PoliticianName: &name,
		Positions:      []domain.Position{{Stance: "For X"}, {Stance: "Against Y"}},
		Warnings:       []string{"w"},
	})
	urls[0] = "mutated"

	if evt.Fingerprint != "fp" || evt.URLs[0] != "https://a.com" {
		t.Fatalf("unexpected identity fields %#v", evt)
	}
	if *evt.PoliticianName != "Jane" || evt.PositionsCount != 2 || evt.WarningsCount != 1 {
		t.Fatalf("unexpected summary %#v", evt)
	}
	if time.Since(evt.CompletedAt) > time.Minute || evt.CompletedAt.Location() != time.UTC {
		t.Fatalf("unexpected timestamp %v", evt.CompletedAt)
	}
	if !strings.Contains(evt.CompletedAt.Format(time.RFC3339), "Z") {
		t.Fatalf("expected UTC timestamp")
	}
}
