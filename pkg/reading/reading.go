// Package reading derives hiragana readings for Japanese vocabulary terms.
package reading

import (
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token is one analyzed unit of a term.
type Token struct {
	Surface  string // The text as it appears (e.g. "走っ")
	BaseForm string // The dictionary form (e.g. "走る")
	Reading  string // Katakana reading, empty when the dictionary has none
}

// Annotator looks up readings with a kagome tokenizer.
type Annotator struct {
	t *tokenizer.Tokenizer
}

// NewAnnotator creates an Annotator backed by the IPA dictionary.
func NewAnnotator() (*Annotator, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Annotator{t: t}, nil
}

// Tokens splits text into tokens with base forms and readings.
func (a *Annotator) Tokens(text string) []Token {
	var out []Token
	for _, tok := range a.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		// IPA features: 6 is the base form, 7 the reading.
		features := tok.Features()
		base := tok.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}
		out = append(out, Token{Surface: tok.Surface, BaseForm: base, Reading: reading})
	}
	return out
}

// Reading returns the hiragana reading of term, or "" if term is not
// Japanese or any part of it has no known reading.
func (a *Annotator) Reading(term string) string {
	if !IsJapanese(term) {
		return ""
	}
	var b strings.Builder
	for _, tok := range a.Tokens(term) {
		switch {
		case tok.Reading != "":
			b.WriteString(ToHiragana(tok.Reading))
		case isKana(tok.Surface):
			b.WriteString(ToHiragana(tok.Surface))
		default:
			return ""
		}
	}
	return b.String()
}

// IsJapanese reports whether s contains any kanji or kana.
func IsJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
			return true
		}
	}
	return false
}

func isKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.In(r, unicode.Hiragana, unicode.Katakana) && r != 'ー' {
			return false
		}
	}
	return true
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
