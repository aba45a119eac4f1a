package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/lexiquiz/pkg/quiz"
	"github.com/japaniel/lexiquiz/pkg/store"
	"github.com/japaniel/lexiquiz/pkg/words"
)

func TestMaintainExportResetImport(t *testing.T) {
	ctx := context.Background()
	g := quiz.New(store.New(store.NewMemoryMedium()), words.NewLoader(nil))
	d, err := g.NextWord(ctx, "easy", "general")
	require.NoError(t, err)
	_, err = g.SubmitAnswer(d.Word.CorrectAnswer)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "progress.json")
	var out bytes.Buffer
	require.NoError(t, maintain(ctx, g, options{export: file}, &out))
	assert.Contains(t, out.String(), "Exported")
	_, err = os.Stat(file)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, maintain(ctx, g, options{reset: true, stats: true}, &out))
	assert.Contains(t, out.String(), "Progress reset.")
	assert.Contains(t, out.String(), "Score:     0")

	out.Reset()
	require.NoError(t, maintain(ctx, g, options{importing: file, stats: true}, &out))
	assert.Contains(t, out.String(), "Imported")
	assert.Contains(t, out.String(), "Score:     10")
}

func TestMaintainImportRejectsBadFile(t *testing.T) {
	g := quiz.New(store.New(store.NewMemoryMedium()), words.NewLoader(nil))
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte("not json"), 0o644))

	err := maintain(context.Background(), g, options{importing: file}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestMaintainPreload(t *testing.T) {
	g := quiz.New(store.New(store.NewMemoryMedium()), words.NewLoader(nil))
	var out bytes.Buffer
	require.NoError(t, maintain(context.Background(), g, options{preload: true}, &out))
	assert.Contains(t, out.String(), "Loading word banks 9/9")
	assert.Contains(t, out.String(), "Loaded 0/9 word banks from source (9 failed).")
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, renderBar(0, 4), renderBar(-10, 4))
	assert.Equal(t, renderBar(100, 4), renderBar(150, 4))
}
