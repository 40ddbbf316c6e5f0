package tokenizer

import (
	"regexp"
	"strings"
)

// tokenPattern matches runs of hiragana, katakana, the long-vowel mark, CJK ideographs and
// ASCII word characters.
var tokenPattern = regexp.MustCompile(`[\p{Hiragana}\p{Katakana}ー\p{Han}0-9A-Za-z_]+`)

// RegexTokenizer is the dependency-free fallback splitter.
type RegexTokenizer struct{}

// NewRegexTokenizer creates the fallback splitter
func NewRegexTokenizer() *RegexTokenizer {
	return &RegexTokenizer{}
}

func (t *RegexTokenizer) Name() string { return string(ModeRegex) }

// Tokenize splits text into character-class runs.
func (t *RegexTokenizer) Tokenize(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	return filterTokens(tokenPattern.FindAllString(text, -1))
}
