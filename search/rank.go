package search

import (
	"strings"

	"github.com/petflix/petflix/source"
	"golang.org/x/exp/slices"
)

// Weights are the relevance points awarded per match.
type Weights struct {
	TitleExact       int `json:"title_exact"`
	TitleToken       int `json:"title_token"`
	TitleAlternate   int `json:"title_alternate"`
	DescriptionExact int `json:"description_exact"`
	DescriptionToken int `json:"description_token"`
	Recent           int `json:"recent"`
	Modern           int `json:"modern"`
}

// DefaultWeights is the regression baseline.
var DefaultWeights = Weights{
	TitleExact:       100,
	TitleToken:       50,
	TitleAlternate:   30,
	DescriptionExact: 20,
	DescriptionToken: 10,
	Recent:           5,
	Modern:           2,
}

// Hit is a ranked record.
type Hit struct {
	Record *source.Record `json:"record"`
	Score  int            `json:"score"`
}

// Score rates r against q. The display and original titles are scored
// separately and the better one counts. Recent and Modern both apply to years after 2020.
func (w Weights) Score(r *source.Record, q Query) int {
	description := strings.ToLower(r.Description)
	keyword := strings.ToLower(q.Keyword)

	score := 0
	for _, title := range titlesOf(r) {
		score = max(score, w.title(title, keyword, q))
	}
	if keyword != "" && strings.Contains(description, keyword) {
		score += w.DescriptionExact
	}
	for _, t := range q.Tokens {
		if strings.Contains(description, strings.ToLower(t)) {
			score += w.DescriptionToken
		}
	}
	if r.Year > 2020 {
		score += w.Recent
	}
	if r.Year > 2015 {
		score += w.Modern
	}
	return score
}

func (w Weights) title(title, keyword string, q Query) int {
	score := 0
	if keyword != "" && strings.Contains(title, keyword) {
		score += w.TitleExact
	}
	for _, t := range q.Tokens {
		if strings.Contains(title, strings.ToLower(t)) {
			score += w.TitleToken
		}
	}
	for _, a := range q.Alternates {
		if strings.Contains(title, strings.ToLower(a)) {
			score += w.TitleAlternate
		}
	}
	return score
}

// Rank scores every record and sorts descending. Ties keep their input order.
func (w Weights) Rank(records []*source.Record, q Query) []Hit {
	hits := make([]Hit, len(records))
	for i, r := range records {
		hits[i] = Hit{Record: r, Score: w.Score(r, q)}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return b.Score - a.Score
	})
	return hits
}
