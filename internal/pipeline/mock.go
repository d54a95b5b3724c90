package pipeline

import "github.com/samvad-hq/position-parser/internal/domain"

type mockPosition struct {
	stance string
	urls   []string
	note   string
}

// mockPositions is grouped by policy area; MockResult flattens it.
var mockPositions = [][]mockPosition{
	{ // economic policy
		{stance: "For increasing the federal minimum wage to $15 per hour by 2026", urls: []string{"https://example.com/issues"}},
		{stance: "Against extending the 2017 tax cuts for households earning over $400,000", urls: []string{"https://example.com/taxes"}},
	},
	{ // business and labor
		{stance: "For the PRO Act to strengthen union organizing rights", urls: []string{"https://example.com/labor"}},
	},
	{ // health care
		{stance: "For expanding Medicare to include dental, vision, and hearing coverage", urls: []string{"https://example.com/healthcare"}},
		{stance: "For allowing Medicare to negotiate prescription drug prices", urls: []string{"https://example.com/healthcare", "https://example.com/issues"}},
	},
	{ // education
		{stance: "For universal pre-K for all 3 and 4 year olds", urls: []string{"https://example.com/education"}},
	},
	{ // environment
		{stance: "For achieving net-zero carbon emissions by 2050", urls: []string{"https://example.com/climate"}},
		{
			stance: "Against new drilling permits on federal lands",
			urls:   []string{"https://example.com/energy"},
			note:   "Contradicts previous 2020 position supporting limited permits",
		},
	},
	{ // civil rights
		{stance: "For the Equality Act to ban discrimination based on sexual orientation and gender identity", urls: []string{"https://example.com/equality"}},
	},
	{ // voting rights
		{stance: "For automatic voter registration nationwide", urls: []string{"https://example.com/voting"}},
		{stance: "Against strict voter ID requirements", urls: []string{"https://example.com/voting"}},
	},
	{ // immigration and foreign affairs
		{stance: "For a pathway to citizenship for DACA recipients", urls: []string{"https://example.com/immigration"}},
	},
	{ // public safety
		{stance: "For universal background checks on all gun sales", urls: []string{"https://example.com/guns"}},
		{stance: "Against defunding police departments", urls: []string{"https://example.com/safety"}},
	},
}

// MockResult is the fixed result served in dev mode. Each call returns a fresh copy.
func MockResult() domain.AnalysisResult {
	name := "John Smith"
	res := domain.AnalysisResult{PoliticianName: &name}
	for _, group := range mockPositions {
		for _, p := range group {
			pos := domain.Position{Stance: p.stance, SourceURLs: append([]string(nil), p.urls...)}
			if p.note != "" {
				note := p.note
				pos.Note = &note
			}
			res.Positions = append(res.Positions, pos)
		}
	}
	return res.Normalize()
}
