package tokenizer

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"surveyml/domain/core"
	"surveyml/internal"
	"surveyml/ports"
)

// Mode selects which tokenizer variant to use.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeKagomeIPA Mode = "kagome-ipa"
	ModeKagomeUni Mode = "kagome-uni"
	ModeRegex     Mode = "regex"
)

// analyzer is a morphological analyzer that can be probed at startup.
type analyzer struct {
	name  Mode
	build func() (ports.Tokenizer, error)
}

// analyzers lists the available morphological analyzers in priority order.
// Files built without the nomorph tag register kagome variants here.
var analyzers []analyzer

func registerAnalyzer(name Mode, build func() (ports.Tokenizer, error)) {
	analyzers = append(analyzers, analyzer{name: name, build: build})
}

// Available lists the variants compiled into this binary, regex last.
func Available() []Mode {
	out := make([]Mode, 0, len(analyzers)+1)
	for _, a := range analyzers {
		out = append(out, a.name)
	}
	return append(out, ModeRegex)
}

// Select probes analyzers in priority order, starting at mode, and returns the first that
// works. Falling past the requested variant is reported as a warning.
func Select(mode Mode) (ports.Tokenizer, []core.Warning) {
	if mode == "" {
		mode = ModeAuto
	}
	if mode == ModeRegex {
		return NewRegexTokenizer(), nil
	}

	start := 0
	if mode != ModeAuto {
		start = -1
		for i, a := range analyzers {
			if a.name == mode {
				start = i
				break
			}
		}
	}

	var warnings []core.Warning
	if start < 0 {
		warnings = append(warnings, core.NewWarning(core.WarnTokenizerFallback, core.StageTokenize,
			"tokenizer %s is not compiled in", mode))
		start = 0
	}

	for i := start; i < len(analyzers); i++ {
		a := analyzers[i]
		tok, err := probe(a)
		if err == nil {
			if i > start {
				warnings = append(warnings, core.NewWarning(core.WarnTokenizerFallback, core.StageTokenize,
					"using %s tokenizer", a.name).With("tokenizer", string(a.name)))
			}
			internal.DefaultLogger.Info("[Tokenizer] using %s", a.name)
			return tok, warnings
		}
		internal.DefaultLogger.Warn("[Tokenizer] %s unavailable: %v", a.name, err)
		warnings = append(warnings, core.NewWarning(core.WarnTokenizerFallback, core.StageTokenize,
			"%s unavailable: %v", a.name, err).With("tokenizer", string(a.name)))
	}

	internal.DefaultLogger.Warn("[Tokenizer] no morphological analyzer available, using regex splitter")
	warnings = append(warnings, core.NewWarning(core.WarnTokenizerFallback, core.StageTokenize,
		"no morphological analyzer available, using regex splitter").With("tokenizer", string(ModeRegex)))
	return NewRegexTokenizer(), warnings
}

// probe builds an analyzer and checks it segments a known sentence. Dictionary loaders
// panic on corrupt data, so panics count as unavailability.
func probe(a analyzer) (tok ports.Tokenizer, err error) {
	defer func() {
		if r := recover(); r != nil {
			tok, err = nil, fmt.Errorf("panic while loading: %v", r)
		}
	}()
	tok, err = a.build()
	if err != nil {
		return nil, err
	}
	if len(tok.Tokenize("給与に満足しています")) == 0 {
		return nil, fmt.Errorf("probe sentence produced no tokens")
	}
	return tok, nil
}

var (
	defaultOnce      sync.Once
	defaultTokenizer ports.Tokenizer
	defaultWarnings  []core.Warning
)

// Default returns the process-wide tokenizer, probing once on first use.
func Default() (ports.Tokenizer, []core.Warning) {
	defaultOnce.Do(func() {
		defaultTokenizer, defaultWarnings = Select(ModeAuto)
	})
	return defaultTokenizer, defaultWarnings
}

// filterTokens trims tokens and drops empty and purely numeric ones.
func filterTokens(tokens []string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" || isDigits(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
