package app

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/montanaflynn/stats"

	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/internal"
)

// LengthSummary describes comment lengths in characters.
type LengthSummary struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Empty  int     `json:"empty"`
}

// SentimentSummary describes the positive-minus-negative word balance of a group.
// Distribution maps each balance score to the number of comments with that score.
type SentimentSummary struct {
	Mean         float64     `json:"mean"`
	Positive     int         `json:"positive"`
	Neutral      int         `json:"neutral"`
	Negative     int         `json:"negative"`
	Distribution map[int]int `json:"distribution"`
}

// KeywordCount is one token and how often it occurs in a group.
type KeywordCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// CommentGroup summarises the comments of one label.
type CommentGroup struct {
	Label     int              `json:"label"`
	Records   int              `json:"records"`
	Length    LengthSummary    `json:"length"`
	Sentiment SentimentSummary `json:"sentiment"`
	Keywords  []KeywordCount   `json:"keywords"`
}

// CommentInsights compares the low-satisfaction group with everyone else.
type CommentInsights struct {
	RunID     core.RunID   `json:"run_id"`
	Tokenizer string       `json:"tokenizer"`
	Low       CommentGroup `json:"low"`
	Rest      CommentGroup `json:"rest"`
}

// InsightsAnalyzer computes comment insights over labeled training artifacts.
type InsightsAnalyzer struct {
	config model.InsightsConfig
	logger *internal.Logger
}

// NewInsightsAnalyzer creates an analyzer with the given word lists and keyword count
func NewInsightsAnalyzer(config model.InsightsConfig) *InsightsAnalyzer {
	return &InsightsAnalyzer{config: config, logger: internal.DefaultLogger}
}

// Analyze groups the training comments of a by label. Keywords are segmented with the
// tokenizer the extractor was fitted with.
func (z *InsightsAnalyzer) Analyze(a *Artifacts) (*CommentInsights, error) {
	if a == nil || a.Labels == nil || a.Labels.Dataset == nil || a.Extractor == nil {
		return nil, core.ErrNotTrained
	}
	if err := z.config.Validate(); err != nil {
		return nil, err
	}

	comments := a.Labels.Dataset.Comments()
	var low, rest []string
	for i, c := range comments {
		if a.Labels.Labels[i] == 1 {
			low = append(low, c)
		} else {
			rest = append(rest, c)
		}
	}

	out := &CommentInsights{
		RunID:     a.RunID,
		Tokenizer: a.Extractor.TokenizerName(),
		Low:       z.group(1, low, a),
		Rest:      z.group(0, rest, a),
	}
	z.logger.Debug("[Insights] run %s: %d low and %d other comments", a.RunID, out.Low.Records, out.Rest.Records)
	return out, nil
}

func (z *InsightsAnalyzer) group(label int, comments []string, a *Artifacts) CommentGroup {
	g := CommentGroup{
		Label:     label,
		Records:   len(comments),
		Sentiment: SentimentSummary{Distribution: make(map[int]int)},
		Keywords:  []KeywordCount{},
	}
	if len(comments) == 0 {
		return g
	}

	lengths := make(stats.Float64Data, len(comments))
	scores := make(stats.Float64Data, len(comments))
	counts := make(map[string]int)
	for i, c := range comments {
		n := utf8.RuneCountInString(c)
		lengths[i] = float64(n)
		if strings.TrimSpace(c) == "" {
			g.Length.Empty++
		}

		score := z.sentiment(c)
		scores[i] = float64(score)
		g.Sentiment.Distribution[score]++
		switch {
		case score > 0:
			g.Sentiment.Positive++
		case score < 0:
			g.Sentiment.Negative++
		default:
			g.Sentiment.Neutral++
		}

		for _, t := range a.Extractor.Tokens(c) {
			counts[t]++
		}
	}

	minLen, _ := lengths.Min()
	maxLen, _ := lengths.Max()
	g.Length.Min = int(minLen)
	g.Length.Max = int(maxLen)
	g.Length.Mean, _ = lengths.Mean()
	g.Length.Median, _ = lengths.Median()
	g.Sentiment.Mean, _ = scores.Mean()
	g.Keywords = topKeywords(counts, z.config.TopKeywords)
	return g
}

// sentiment counts listed positive words present in c minus listed negative words.
func (z *InsightsAnalyzer) sentiment(c string) int {
	score := 0
	for _, w := range z.config.PositiveWords {
		if w != "" && strings.Contains(c, w) {
			score++
		}
	}
	for _, w := range z.config.NegativeWords {
		if w != "" && strings.Contains(c, w) {
			score--
		}
	}
	return score
}

// topKeywords orders by count, then term, and keeps at most n.
func topKeywords(counts map[string]int, n int) []KeywordCount {
	out := make([]KeywordCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, KeywordCount{Term: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
