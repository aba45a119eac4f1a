package words

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed fallback.json
var fallbackJSON []byte

// builtinBanks parses the embedded sample set once.
var builtinBanks = sync.OnceValues(func() (map[string]Bank, error) {
	var docs []Document
	if err := json.Unmarshal(fallbackJSON, &docs); err != nil {
		return nil, fmt.Errorf("parse built-in banks: %w", err)
	}
	out := make(map[string]Bank, len(docs))
	for _, doc := range docs {
		b, err := toBank(doc, doc.Difficulty, doc.Category)
		if err != nil {
			return nil, fmt.Errorf("built-in bank %s: %w", Key(doc.Difficulty, doc.Category), err)
		}
		out[Key(doc.Difficulty, doc.Category)] = b
	}
	return out, nil
})

// Builtin returns the embedded sample bank for a pair. The bool is false if
// the pair has no sample.
func Builtin(difficulty, category string) (Bank, bool) {
	banks, err := builtinBanks()
	if err != nil {
		return Bank{}, false
	}
	b, ok := banks[Key(difficulty, category)]
	return b, ok
}
