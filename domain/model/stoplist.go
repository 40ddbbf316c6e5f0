package model

import (
	"strings"
	"unicode"
)

// StopList decides which vocabulary terms carry no meaning for importance reports.
type StopList struct {
	Terms            []string `json:"terms" yaml:"terms"`
	MaxParticleRunes int      `json:"max_particle_runes" yaml:"max_particle_runes"`
	DropNumerals     bool     `json:"drop_numerals" yaml:"drop_numerals"`
}

// DefaultStopList returns common Japanese particles, auxiliaries and filler verbs.
func DefaultStopList() StopList {
	return StopList{
		Terms: []string{
			"の", "は", "が", "を", "に", "で", "と", "も", "や", "へ", "か", "ね", "よ",
			"から", "まで", "より", "など", "について", "として", "による",
			"です", "ます", "でし", "まし", "た", "だ", "て", "な", "ない", "ぬ",
			"する", "し", "して", "した", "いる", "い", "ある", "あり", "なる", "れる", "られる",
			"こと", "もの", "ため", "よう", "これ", "それ", "あれ", "ここ",
			"思う", "思い", "思います", "感じ", "感じる", "おり", "ており", "ています",
		},
		MaxParticleRunes: 2,
		DropNumerals:     true,
	}
}

// Contains reports whether term is listed explicitly.
func (s StopList) Contains(term string) bool {
	for _, t := range s.Terms {
		if t == term {
			return true
		}
	}
	return false
}

// IsNoise reports whether a vocabulary term should be left out of importance rankings.
func (s StopList) IsNoise(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	if s.Contains(term) {
		return true
	}
	// n-grams are noise only when every part is
	if parts := strings.Fields(term); len(parts) > 1 {
		for _, p := range parts {
			if !s.IsNoise(p) {
				return false
			}
		}
		return true
	}
	if s.DropNumerals && isNumeral(term) {
		return true
	}
	if s.MaxParticleRunes > 0 && isHiraganaOnly(term) && len([]rune(term)) <= s.MaxParticleRunes {
		return true
	}
	return false
}

func isNumeral(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.Is(unicode.Han, r) {
			return false
		}
		if unicode.Is(unicode.Han, r) && !strings.ContainsRune("〇一二三四五六七八九十百千万億", r) {
			return false
		}
	}
	return true
}

func isHiraganaOnly(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Hiragana, r) && r != 'ー' {
			return false
		}
	}
	return true
}
