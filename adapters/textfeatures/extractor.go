package textfeatures

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/internal"
	"surveyml/ports"
)

// ColumnName returns the feature column for a vocabulary term.
func ColumnName(term string) string {
	return model.TextFeaturePrefix + term
}

// TermFromColumn recovers the vocabulary term from a feature column name.
func TermFromColumn(column string) (string, bool) {
	if !strings.HasPrefix(column, model.TextFeaturePrefix) {
		return "", false
	}
	return strings.TrimPrefix(column, model.TextFeaturePrefix), true
}

// Vectorizer fits TF-IDF extractors over a comment corpus.
type Vectorizer struct {
	config    model.FeatureConfig
	tokenizer ports.Tokenizer
	logger    *internal.Logger
}

// NewVectorizer creates a vectorizer using tok for segmentation
func NewVectorizer(config model.FeatureConfig, tok ports.Tokenizer) *Vectorizer {
	return &Vectorizer{config: config, tokenizer: tok, logger: internal.DefaultLogger}
}

// Extractor is a fitted vocabulary with inverse document frequencies. It is immutable
// after fitting and safe for concurrent Transform calls.
type Extractor struct {
	FitID core.FitID

	config     model.FeatureConfig
	tokenizer  ports.Tokenizer
	vocabulary []string
	index      map[string]int
	idf        []float64
	documents  int
}

// FitTransform learns the vocabulary from comments and returns the TF-IDF rows for the same
// comments. An empty vocabulary is not an error: the extractor has zero columns and an
// empty_vocabulary warning is returned.
func (v *Vectorizer) FitTransform(comments []string) (*Extractor, [][]float64, []core.Warning, error) {
	if err := v.config.Validate(); err != nil {
		return nil, nil, nil, err
	}

	docs := make([][]string, len(comments))
	for i, c := range comments {
		docs[i] = terms(v.tokenizer.Tokenize(Clean(c)), v.config.NGramMin, v.config.NGramMax)
	}

	df := make(map[string]int)
	counts := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, t := range doc {
			counts[t]++
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := len(docs)
	maxDocs := v.config.MaxDF * float64(n)
	candidates := make([]string, 0, len(df))
	for t, d := range df {
		if d < v.config.MinDF || float64(d) > maxDocs {
			continue
		}
		candidates = append(candidates, t)
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := counts[candidates[i]], counts[candidates[j]]
		if ci != cj {
			return ci > cj
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > v.config.MaxFeatures {
		candidates = candidates[:v.config.MaxFeatures]
	}
	sort.Strings(candidates)

	e := &Extractor{
		FitID:      core.NewFitID(),
		config:     v.config,
		tokenizer:  v.tokenizer,
		vocabulary: candidates,
		index:      make(map[string]int, len(candidates)),
		idf:        make([]float64, len(candidates)),
		documents:  n,
	}
	for i, t := range candidates {
		e.index[t] = i
		e.idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	var warnings []core.Warning
	if len(candidates) == 0 {
		warnings = append(warnings, core.NewWarning(core.WarnEmptyVocabulary, core.StageExtract,
			"no vocabulary terms survived document-frequency filtering").
			With("documents", n).With("distinct_terms", len(df)))
		v.logger.Warn("[TextFeatures] empty vocabulary over %d documents", n)
	} else {
		v.logger.Debug("[TextFeatures] fitted %d terms over %d documents (%d distinct)", len(candidates), n, len(df))
	}

	rows := make([][]float64, n)
	for i, doc := range docs {
		rows[i] = e.vectorize(doc)
	}
	return e, rows, warnings, nil
}

// Transform vectorizes one comment against the fitted vocabulary. Unknown terms are dropped.
func (e *Extractor) Transform(comment string) []float64 {
	return e.vectorize(terms(e.tokenizer.Tokenize(Clean(comment)), e.config.NGramMin, e.config.NGramMax))
}

// TransformAll vectorizes each comment.
func (e *Extractor) TransformAll(comments []string) [][]float64 {
	rows := make([][]float64, len(comments))
	for i, c := range comments {
		rows[i] = e.Transform(c)
	}
	return rows
}

func (e *Extractor) vectorize(doc []string) []float64 {
	row := make([]float64, len(e.vocabulary))
	for _, t := range doc {
		if j, ok := e.index[t]; ok {
			row[j]++
		}
	}
	floats.Mul(row, e.idf)
	if norm := floats.Norm(row, 2); norm > 0 {
		floats.Scale(1/norm, row)
	}
	return row
}

// Tokens segments comment exactly as fitting did, without n-gram expansion.
func (e *Extractor) Tokens(comment string) []string {
	return e.tokenizer.Tokenize(Clean(comment))
}

// Vocabulary returns the fitted terms in column order.
func (e *Extractor) Vocabulary() []string {
	return append([]string(nil), e.vocabulary...)
}

// Columns returns the feature column names in order.
func (e *Extractor) Columns() []string {
	cols := make([]string, len(e.vocabulary))
	for i, t := range e.vocabulary {
		cols[i] = ColumnName(t)
	}
	return cols
}

// IDF returns the inverse document frequency of a fitted term.
func (e *Extractor) IDF(term string) (float64, bool) {
	j, ok := e.index[term]
	if !ok {
		return 0, false
	}
	return e.idf[j], true
}

// Len returns the vocabulary size
func (e *Extractor) Len() int { return len(e.vocabulary) }

// Documents returns the size of the fitting corpus
func (e *Extractor) Documents() int { return e.documents }

// TokenizerName reports which tokenizer variant the extractor was fitted with
func (e *Extractor) TokenizerName() string { return e.tokenizer.Name() }

// terms expands tokens into n-grams joined by a space.
func terms(tokens []string, minN, maxN int) []string {
	if minN == 1 && maxN == 1 {
		return tokens
	}
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
