package reading

import (
	"testing"
)

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"イ", "い"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestIsJapanese(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"犬", true},
		{"テスト", true},
		{"ねこ", true},
		{"Happy", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsJapanese(tt.in); got != tt.want {
			t.Errorf("IsJapanese(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestAnnotatorReading(t *testing.T) {
	a, err := NewAnnotator()
	if err != nil {
		t.Fatalf("Failed to create annotator: %v", err)
	}

	tests := []struct {
		term, want string
	}{
		{"犬", "いぬ"},
		{"猫", "ねこ"},
		{"テスト", "てすと"},
		{"Brave", ""},
	}
	for _, tt := range tests {
		if got := a.Reading(tt.term); got != tt.want {
			t.Errorf("Reading(%q) = %q; want %q", tt.term, got, tt.want)
		}
	}
}

func TestAnnotatorTokens(t *testing.T) {
	a, err := NewAnnotator()
	if err != nil {
		t.Fatalf("Failed to create annotator: %v", err)
	}
	tokens := a.Tokens("走った")
	if len(tokens) == 0 {
		t.Fatal("expected tokens")
	}
	if tokens[0].BaseForm != "走る" {
		t.Errorf("expected base form 走る, got %q", tokens[0].BaseForm)
	}
}
