package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seb7887/evbus/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRun_HeartbeatsUntilCancelled(t *testing.T) {
	cfg, err := config.LoadConfig[config.Config](t.TempDir(), "evbus", config.Defaults())
	require.NoError(t, err)
	cfg.Admin.Addr = "127.0.0.1:0"
	cfg.Demo.Interval = 5 * time.Millisecond
	require.NoError(t, cfg.Validate())

	core, logs := observer.New(zapcore.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.New(core)) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("heartbeat").Len() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.Equal(t, 1, logs.FilterMessage("shutting down").Len())
}

func TestRun_BadAdminAddr(t *testing.T) {
	cfg, err := config.LoadConfig[config.Config](t.TempDir(), "evbus", config.Defaults())
	require.NoError(t, err)
	cfg.Admin.Addr = "not-an-address"

	err = run(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestServeCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evbus.yaml"), []byte("async:\n  workers: 0\n"), 0o600))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"serve", "--config-path", dir})

	err := root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
