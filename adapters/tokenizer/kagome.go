//go:build !nomorph

package tokenizer

import (
	"strings"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome-dict/uni"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"

	"surveyml/ports"
)

func init() {
	registerAnalyzer(ModeKagomeIPA, func() (ports.Tokenizer, error) {
		return newKagomeTokenizer(ModeKagomeIPA, ipa.Dict())
	})
	registerAnalyzer(ModeKagomeUni, func() (ports.Tokenizer, error) {
		return newKagomeTokenizer(ModeKagomeUni, uni.Dict())
	})
}

// KagomeTokenizer segments Japanese text with the kagome morphological analyzer.
type KagomeTokenizer struct {
	name Mode
	t    *kagome.Tokenizer
}

func newKagomeTokenizer(name Mode, d *dict.Dict) (*KagomeTokenizer, error) {
	t, err := kagome.New(d, kagome.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &KagomeTokenizer{name: name, t: t}, nil
}

func (k *KagomeTokenizer) Name() string { return string(k.name) }

// Tokenize returns surface forms in normal segmentation mode.
func (k *KagomeTokenizer) Tokenize(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	return filterTokens(k.t.Wakati(text))
}
