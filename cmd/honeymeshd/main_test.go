package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/honeymesh/config"
	"github.com/hupe1980/honeymesh/core"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestServeCommand_MissingConfigFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--config", filepath.Join(t.TempDir(), "nope.yaml")})

	assert.Error(t, cmd.Execute())
}

func TestServe_StartsAndStops(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestBuildModel(t *testing.T) {
	m, err := buildModel(context.Background(), config.ModelConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = buildModel(context.Background(), config.ModelConfig{Provider: "llama"})
	assert.Error(t, err)
}

func TestBuildSessionStore(t *testing.T) {
	store, err := buildSessionStore(context.Background(), config.SessionConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, store)

	store, err = buildSessionStore(context.Background(), config.SessionConfig{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "sessions.db"),
	})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = buildSessionStore(context.Background(), config.SessionConfig{Backend: "redis"})
	assert.Error(t, err)
}

func TestBuildScoreConfig(t *testing.T) {
	sc := buildScoreConfig(config.ScorerConfig{
		CategoryWeights: map[string]float64{"phishingLinks": 30},
		DangerPenalty:   50,
		DangerWords:     []string{"scam"},
	})

	assert.Equal(t, 30.0, sc.CategoryWeights[core.CategoryPhishingLinks])
	// Untouched categories keep their defaults.
	assert.Equal(t, 12.0, sc.CategoryWeights[core.CategoryBankAccounts])
	assert.Equal(t, 50.0, sc.DangerPenalty)
	assert.Equal(t, []string{"scam"}, sc.DangerWords)
}

func TestBuildTranscript(t *testing.T) {
	ts, err := buildTranscript(config.TranscriptConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, ts)

	ts, err = buildTranscript(config.TranscriptConfig{Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, ts)
}
