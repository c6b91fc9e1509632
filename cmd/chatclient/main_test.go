package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity-chatbot/internal/client/channel"
	"productivity-chatbot/internal/config"
)

func TestWatchNetworkEmitsOnRecovery(t *testing.T) {
	var calls int32
	// offline, offline, online, online
	probe := func(context.Context) bool {
		n := atomic.AddInt32(&calls, 1)
		return n >= 3
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	triggers := make(chan channel.Trigger, 4)
	go watchNetwork(ctx, probe, 10*time.Millisecond, triggers)

	select {
	case tr := <-triggers:
		assert.Equal(t, channel.TriggerOnline, tr)
	case <-time.After(2 * time.Second):
		t.Fatal("no online trigger")
	}
	select {
	case tr := <-triggers:
		t.Fatalf("unexpected second trigger %s", tr)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTCPProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	assert.True(t, tcpProbe("http://"+addr)(context.Background()))
	require.NoError(t, ln.Close())
	assert.False(t, tcpProbe("http://"+addr)(context.Background()))
}

func TestApplyFlagsOverridesConfig(t *testing.T) {
	opts := &options{}
	cmd := newRootCommand(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--server", "http://chat:8080", "--http-only", "--user", "9"}))
	cfg := &config.Config{}
	cfg.Client.HistoryBackend = "sqlite"

	applyFlags(cmd, cfg, opts)
	assert.Equal(t, "http://chat:8080", cfg.Client.ServerURL)
	assert.True(t, cfg.Client.HTTPOnly)
	assert.Equal(t, uint(9), cfg.Client.UserID)
	assert.Equal(t, "sqlite", cfg.Client.HistoryBackend)
}

func TestRunQuitsOnEOFInHTTPOnlyMode(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "none.toml"))
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Client.HTTPOnly = true
	cfg.Client.HistoryBackend = "memory"
	cfg.Client.ServerURL = "http://127.0.0.1:1"

	var out bytes.Buffer
	err = run(context.Background(), cfg, strings.NewReader("   \n/help\n/clear\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Please enter a message")
	assert.Contains(t, out.String(), "Chat history cleared")
}
