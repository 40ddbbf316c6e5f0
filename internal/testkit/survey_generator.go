package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"surveyml/domain/core"
	"surveyml/domain/survey"
	"surveyml/ports"
)

// SurveyGeneratorConfig configures the demo survey generator
type SurveyGeneratorConfig struct {
	Respondents int     `json:"respondents"`
	LowFraction float64 `json:"low_fraction"`
	MinWords    int     `json:"min_words"`
	MaxWords    int     `json:"max_words"`
	MissingRate float64 `json:"missing_rate"` // chance that a score cell is left blank
	Seed        int64   `json:"seed"`
}

// DefaultSurveyConfig returns the 150-respondent, 20% low-satisfaction setup
func DefaultSurveyConfig() SurveyGeneratorConfig {
	return SurveyGeneratorConfig{
		Respondents: 150,
		LowFraction: 0.2,
		MinWords:    8,
		MaxWords:    14,
		Seed:        42,
	}
}

var negativeWords = []string{
	"不満", "改善", "問題", "課題", "厳しい", "大変", "困難", "ストレス", "疲労", "負担",
	"不安", "心配", "期待", "希望", "要望", "残業", "忙しい", "時間", "給与", "評価",
	"上司", "同僚", "人間関係", "環境", "制度", "システム", "業務", "仕事", "会社",
	"経営", "戦略", "方針", "変更", "改革", "将来", "キャリア", "成長", "機会",
}

var positiveWords = []string{
	"満足", "良い", "素晴らしい", "優秀", "充実", "安心", "快適", "効率", "成長", "学習",
	"達成", "成功", "評価", "認められる", "支援", "サポート", "協力", "チームワーク", "信頼", "尊重",
	"自由", "裁量", "責任", "挑戦", "機会", "可能性", "将来", "キャリア", "昇進", "昇格",
	"給与", "待遇", "福利厚生", "休暇", "働きやすい", "環境", "制度", "システム", "効率化",
}

const (
	negativeSuffix = "について不満を感じています。改善が必要だと思います。"
	positiveSuffix = "に満足しており、今後も継続して働きたいと思います。"
)

// weighted is a discrete distribution over integer scores
type weighted struct {
	values []int
	probs  []float64
}

var (
	lowRecommend  = weighted{[]int{0, 1, 2, 3, 4, 5, 6}, []float64{0.1, 0.15, 0.2, 0.25, 0.15, 0.1, 0.05}}
	lowLikert     = weighted{[]int{1, 2, 3}, []float64{0.4, 0.4, 0.2}}
	lowIntention  = weighted{[]int{1, 2, 3}, []float64{0.5, 0.3, 0.2}}
	highRecommend = weighted{[]int{6, 7, 8, 9, 10}, []float64{0.1, 0.2, 0.3, 0.25, 0.15}}
	highLikert    = weighted{[]int{3, 4, 5}, []float64{0.3, 0.4, 0.3}}
)

// SurveyDataGenerator produces employee survey responses with a low-satisfaction group
// that uses negative vocabulary and low scores.
type SurveyDataGenerator struct {
	config SurveyGeneratorConfig
	rng    *rand.Rand
}

// NewSurveyDataGenerator creates a new survey data generator
func NewSurveyDataGenerator(config SurveyGeneratorConfig) *SurveyDataGenerator {
	return &SurveyDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var _ ports.SurveySource = (*SurveyDataGenerator)(nil)

// Name identifies the source
func (g *SurveyDataGenerator) Name() string { return "demo" }

// Load generates a fresh dataset
func (g *SurveyDataGenerator) Load(ctx context.Context) (*survey.Dataset, []core.Warning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if g.config.Respondents < 1 {
		return nil, nil, core.NewConfigError("respondents", "must be at least 1")
	}
	return g.Generate(), nil, nil
}

// Generate builds the dataset. The first LowFraction of rows form the low group.
func (g *SurveyDataGenerator) Generate() *survey.Dataset {
	n := g.config.Respondents
	low := int(float64(n) * g.config.LowFraction)

	ds := &survey.Dataset{
		Records:           make([]survey.Record, 0, n),
		NumericFields:     survey.DefaultNumericFields(),
		TextFields:        []string{survey.FieldComment},
		SatisfactionField: survey.FieldOverallSatisfaction,
		Source:            g.Name(),
	}
	for i := 0; i < n; i++ {
		isLow := i < low
		ds.Records = append(ds.Records, g.respondent(i, isLow))
	}
	return ds
}

func (g *SurveyDataGenerator) respondent(i int, isLow bool) survey.Record {
	recommend, likert, intention := highRecommend, highLikert, highLikert
	words, suffix := positiveWords, positiveSuffix
	if isLow {
		recommend, likert, intention = lowRecommend, lowLikert, lowIntention
		words, suffix = negativeWords, negativeSuffix
	}

	scores := map[string]interface{}{
		survey.FieldRecommendScore:      g.draw(recommend),
		survey.FieldOverallSatisfaction: g.draw(likert),
		survey.FieldLongTermIntention:   g.draw(intention),
		survey.FieldSenseOfContribution: g.draw(likert),
	}
	if g.config.MissingRate > 0 {
		for _, field := range survey.DefaultNumericFields() {
			if field != survey.FieldOverallSatisfaction && g.rng.Float64() < g.config.MissingRate {
				scores[field] = nil
			}
		}
	}

	return survey.Record{
		ID:       fmt.Sprintf("respondent_%04d", i+1),
		Scores:   scores,
		Comments: map[string]string{survey.FieldComment: g.comment(words, suffix)},
	}
}

func (g *SurveyDataGenerator) comment(words []string, suffix string) string {
	count := g.config.MinWords
	if g.config.MaxWords > g.config.MinWords {
		count += g.rng.Intn(g.config.MaxWords - g.config.MinWords + 1)
	}
	picked := make([]string, count)
	for i := range picked {
		picked[i] = words[g.rng.Intn(len(words))]
	}
	return strings.Join(picked, " ") + suffix
}

func (g *SurveyDataGenerator) draw(w weighted) int {
	u := g.rng.Float64()
	var acc float64
	for i, p := range w.probs {
		acc += p
		if u < acc {
			return w.values[i]
		}
	}
	return w.values[len(w.values)-1]
}
