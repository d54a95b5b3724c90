package analyzer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samvad-hq/position-parser/internal/domain"
)

// decodeReply parses the model's JSON into a result. Only a syntax error or a non-object
// document is an error; fields of the wrong shape are coerced where the intent is clear
// (a single string where a list is expected) and dropped otherwise.
func decodeReply(text string) (domain.AnalysisResult, int, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return domain.AnalysisResult{}, 0, err
	}
	if dec.More() {
		return domain.AnalysisResult{}, 0, fmt.Errorf("unexpected data after top-level value")
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return domain.AnalysisResult{}, 0, fmt.Errorf("expected a JSON object, got %s", jsonKind(doc))
	}

	res := domain.AnalysisResult{
		PoliticianName: optionalString(obj["politician_name"]),
		Warnings:       stringList(obj["warnings"]),
	}

	skipped := 0
	items, _ := obj["positions"].([]any)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		stance, _ := scalarString(m["stance"])
		res.Positions = append(res.Positions, domain.Position{
			Stance:     stance,
			SourceURLs: stringList(m["source_urls"]),
			Note:       optionalString(m["note"]),
		})
	}
	return res, skipped, nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func optionalString(v any) *string {
	if s, ok := scalarString(v); ok {
		return &s
	}
	return nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := scalarString(item); ok {
				out = append(out, s)
			}
		}
		return out
	case nil:
		return nil
	default:
		if s, ok := scalarString(t); ok && s != "" {
			return []string{s}
		}
		return nil
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
