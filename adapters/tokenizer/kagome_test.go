//go:build !nomorph

package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKagomeTokenizers(t *testing.T) {
	for _, mode := range []Mode{ModeKagomeIPA, ModeKagomeUni} {
		t.Run(string(mode), func(t *testing.T) {
			tok, warnings := Select(mode)
			require.Empty(t, warnings)
			assert.Equal(t, string(mode), tok.Name())

			tokens := tok.Tokenize("給与に満足しています")
			assert.Contains(t, tokens, "給与")
			assert.Contains(t, tokens, "満足")
			for _, token := range tokens {
				assert.NotContains(t, token, " ")
			}
			assert.Empty(t, tok.Tokenize(""))
		})
	}
}

func TestKagome_DropsDigits(t *testing.T) {
	tok, _ := Select(ModeKagomeIPA)
	assert.NotContains(t, tok.Tokenize("評価は10点です"), "10")
}
