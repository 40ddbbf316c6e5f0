package ports

// Tokenizer converts raw text into surface tokens.
type Tokenizer interface {
	// Name identifies the active variant ("kagome-ipa", "kagome-uni", "regex").
	Name() string
	// Tokenize never fails; empty input yields an empty slice.
	Tokenize(text string) []string
}
