package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"arrivatui/internal/selection"
	"arrivatui/internal/telemetry"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubUI(t *testing.T, fn func(ctx context.Context, flow *selection.Flow, source selection.TripSource) error) {
	t.Helper()
	orig := runUI
	runUI = func(ctx context.Context, flow *selection.Flow, source selection.TripSource, metrics *telemetry.Metrics, opts ...tea.ProgramOption) error {
		return fn(ctx, flow, source)
	}
	t.Cleanup(func() { runUI = orig })
}

func TestRootCmd_RunsSelectionAgainstService(t *testing.T) {
	fake := newFakeArriva(t)

	var final *selection.Flow
	stubUI(t, func(ctx context.Context, flow *selection.Flow, source selection.TripSource) error {
		final = flow
		return flow.Step(ctx, source, selection.Down, selection.Enter, selection.Down, selection.Down, selection.Enter)
	})

	output, err := executeCommand(rootCmd, "--date", "19-04-2024")
	require.NoError(t, err)
	assert.Contains(t, output, "Loading stop catalogue...")

	require.NotNil(t, final)
	assert.Equal(t, 3, final.Origins().Len())
	assert.True(t, final.HasResults())
	assert.Equal(t, selection.Ready, final.State().Phase)

	searches := fake.searches()
	require.Len(t, searches, 1)
	assert.Equal(t, "buses", searches[0].Get("controller"))
	assert.Equal(t, "goSearch", searches[0].Get("method"))
	assert.Equal(t, "5274", searches[0].Get("data[from]"))
	assert.Equal(t, "4802", searches[0].Get("data[to]"))
	assert.Equal(t, "19-04-2024", searches[0].Get("data[date]"))

	for _, ua := range fake.userAgents {
		assert.Equal(t, "curl/8.7.1", ua)
	}
}

func TestRootCmd_QuitWithoutSearching(t *testing.T) {
	fake := newFakeArriva(t)
	stubUI(t, func(ctx context.Context, flow *selection.Flow, source selection.TripSource) error {
		return flow.Step(ctx, source, selection.Down, selection.Enter, selection.Down, selection.Enter, selection.Quit)
	})

	_, err := executeCommand(rootCmd)
	require.NoError(t, err)
	assert.Empty(t, fake.searches())
}

func TestRootCmd_CatalogueFailure(t *testing.T) {
	fake := newFakeArriva(t)
	fake.stopsStatus = http.StatusInternalServerError

	called := false
	stubUI(t, func(ctx context.Context, flow *selection.Flow, source selection.TripSource) error {
		called = true
		return nil
	})

	_, err := executeCommand(rootCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load stops")
	assert.Contains(t, err.Error(), "status 500")
	assert.False(t, called)
}

func TestRootCmd_UIErrorIsReturned(t *testing.T) {
	newFakeArriva(t)
	boom := errors.New("no terminal")
	stubUI(t, func(ctx context.Context, flow *selection.Flow, source selection.TripSource) error {
		return boom
	})

	_, err := executeCommand(rootCmd)
	assert.ErrorIs(t, err, boom)
}

func TestRootCmd_InvalidConfiguration(t *testing.T) {
	newFakeArriva(t)
	stubUI(t, func(ctx context.Context, flow *selection.Flow, source selection.TripSource) error {
		t.Fatal("UI must not start with an invalid configuration")
		return nil
	})

	_, err := executeCommand(rootCmd, "--date", "2024-04-19")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date must be a DD-MM-YYYY date")

	_, err = executeCommand(rootCmd, "--gtfs", "does-not-exist.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gtfs_path must be an existing file")

	_, err = executeCommand(rootCmd, "--timeout", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout must be positive")
}

func TestRootCmd_LogFile(t *testing.T) {
	newFakeArriva(t)
	stubUI(t, func(ctx context.Context, flow *selection.Flow, source selection.TripSource) error {
		return nil
	})
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	path := filepath.Join(t.TempDir(), "arrivatui.log")
	_, err := executeCommand(rootCmd, "--log-file", path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Stop catalogue loaded")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, err := executeCommand(rootCmd, "5274")
	assert.Error(t, err)
}
