package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/islandrv/helpdesk/backend/internal/config"
)

func TestNewWithoutAI(t *testing.T) {
	a, err := New(context.Background(), &config.Config{AI: config.AIConfig{Provider: config.ProviderOpenAI}})
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Desk.AIAvailable())
	assert.Equal(t, "Island RV Rentals", a.Desk.Policy().Brand)
	assert.Empty(t, a.Desk.Catalog().Categories())
}

func TestNewWithOpenAI(t *testing.T) {
	a, err := New(context.Background(), &config.Config{AI: config.AIConfig{
		Provider: config.ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
	}})
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.Desk.AIAvailable())
}

func TestNewWithFiles(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath,
		[]byte(`{"categories":[{"id":"class-c","name":"Class C Motorhome"}]}`), 0o600))

	a, err := New(context.Background(), &config.Config{
		AI:         config.AIConfig{Provider: config.ProviderOpenAI},
		Catalog:    config.CatalogConfig{File: catalogPath},
		Transcript: config.TranscriptConfig{DBPath: filepath.Join(dir, "transcripts.db")},
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Len(t, a.Desk.Catalog().Categories(), 1)

	session, err := a.Chats.CreateSession(context.Background(), "cli")
	require.NoError(t, err)
	_, err = a.Chats.GetSession(context.Background(), session.ID)
	assert.NoError(t, err)
}

func TestNewRejectsBadPolicy(t *testing.T) {
	_, err := New(context.Background(), &config.Config{
		Policy: config.PolicyConfig{File: filepath.Join(t.TempDir(), "missing.yaml")},
	})
	assert.Error(t, err)
}
