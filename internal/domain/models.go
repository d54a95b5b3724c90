package domain

// Domain contains core models shared by the crawler, analyzer and pipeline.

// Position is a single policy stance attributed to one or more source pages.
type Position struct {
	Stance     string   `json:"stance"`
	SourceURLs []string `json:"source_urls"`
	Note       *string  `json:"note,omitempty"`
}

// AnalysisResult is the structured output of one pipeline run.
type AnalysisResult struct {
	PoliticianName *string    `json:"politician_name"`
	Positions      []Position `json:"positions"`
	Warnings       []string   `json:"warnings,omitempty"`
}

// Normalize puts r in its canonical form: positions (and each source list) are never nil
// and an empty warnings list is nil, matching what a JSON round trip produces.
func (r AnalysisResult) Normalize() AnalysisResult {
	if r.Positions == nil {
		r.Positions = []Position{}
	}
	if len(r.Warnings) == 0 {
		r.Warnings = nil
	}
	for i := range r.Positions {
		if r.Positions[i].SourceURLs == nil {
			r.Positions[i].SourceURLs = []string{}
		}
	}
	return r
}

// AppendWarnings returns a copy of r with msgs appended after the existing warnings.
func (r AnalysisResult) AppendWarnings(msgs ...string) AnalysisResult {
	if len(msgs) == 0 {
		return r
	}
	out := make([]string, 0, len(r.Warnings)+len(msgs))
	out = append(out, r.Warnings...)
	out = append(out, msgs...)
	r.Warnings = out
	return r
}

// ContentMap maps a normalized URL to the text extracted from it.
type ContentMap map[string]string
