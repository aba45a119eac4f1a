package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MinIncorrect is the minimum number of decoy definitions per entry.
const MinIncorrect = 3

// ErrValidation marks a word bank that parsed but failed schema checks.
var ErrValidation = errors.New("validation error")

// FieldError describes one failed check.
type FieldError struct {
	Index   int // entry index, -1 for document-level problems
	Field   string
	Message string
}

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		fe := e.Errors[0]
		if fe.Index < 0 {
			return fmt.Sprintf("validation: %s: %s", fe.Field, fe.Message)
		}
		return fmt.Sprintf("validation: words[%d].%s: %s", fe.Index, fe.Field, fe.Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Parse decodes a word bank document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse word bank: %w", err)
	}
	return doc, nil
}

// Validate checks every entry of doc. The whole document is rejected on any
// violation.
func Validate(doc Document) error {
	var errs []FieldError
	if len(doc.Words) == 0 {
		errs = append(errs, FieldError{Index: -1, Field: "words", Message: "must contain at least one entry"})
	}
	for i, w := range doc.Words {
		if strings.TrimSpace(w.Term) == "" {
			errs = append(errs, FieldError{Index: i, Field: "word", Message: "must be non-empty"})
		}
		if strings.TrimSpace(w.Pronunciation) == "" {
			errs = append(errs, FieldError{Index: i, Field: "pronunciation", Message: "must be non-empty"})
		}
		if strings.TrimSpace(w.CorrectDefinition) == "" {
			errs = append(errs, FieldError{Index: i, Field: "correct_definition", Message: "must be non-empty"})
		}
		if n := len(Decoys(w)); n < MinIncorrect {
			errs = append(errs, FieldError{
				Index:   i,
				Field:   "incorrect_options",
				Message: fmt.Sprintf("need at least %d distinct options other than the definition, got %d", MinIncorrect, n),
			})
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Decoys returns the usable incorrect options of e in order: non-empty,
// distinct, and never equal to the correct definition.
func Decoys(e Entry) []string {
	seen := map[string]bool{e.CorrectDefinition: true}
	out := make([]string, 0, len(e.IncorrectDefinitions))
	for _, opt := range e.IncorrectDefinitions {
		if strings.TrimSpace(opt) == "" || seen[opt] {
			continue
		}
		seen[opt] = true
		out = append(out, opt)
	}
	return out
}

// ReadingFiller derives a pronunciation for a term, or returns "".
type ReadingFiller func(term string) string

// fillReadings sets missing pronunciations using fill.
func fillReadings(doc *Document, fill ReadingFiller) {
	if fill == nil {
		return
	}
	for i := range doc.Words {
		if strings.TrimSpace(doc.Words[i].Pronunciation) == "" {
			doc.Words[i].Pronunciation = fill(doc.Words[i].Term)
		}
	}
}

// toBank validates doc and copies it into a Bank for the given pair.
func toBank(doc Document, difficulty, category string) (Bank, error) {
	if err := Validate(doc); err != nil {
		return Bank{}, err
	}
	entries := make([]Entry, len(doc.Words))
	for i, w := range doc.Words {
		w.IncorrectDefinitions = append([]string(nil), w.IncorrectDefinitions...)
		entries[i] = w
	}
	return Bank{Difficulty: difficulty, Category: category, Words: entries}, nil
}
