package main

import (
	"context"
	"net"
	"net/url"
	"time"

	"productivity-chatbot/internal/client/channel"
)

// tcpProbe reports whether the server's host:port accepts connections.
func tcpProbe(serverURL string) func(ctx context.Context) bool {
	addr := serverURL
	if u, err := url.Parse(serverURL); err == nil && u.Host != "" {
		addr = u.Host
		if u.Port() == "" {
			if u.Scheme == "https" || u.Scheme == "wss" {
				addr = net.JoinHostPort(u.Hostname(), "443")
			} else {
				addr = net.JoinHostPort(u.Hostname(), "80")
			}
		}
	}
	return func(ctx context.Context) bool {
		dialer := net.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// watchNetwork polls probe and emits an online trigger each time the
// server becomes reachable again after being unreachable.
func watchNetwork(ctx context.Context, probe func(context.Context) bool, interval time.Duration, triggers chan<- channel.Trigger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	online := probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := probe(ctx)
			if now && !online {
				select {
				case triggers <- channel.TriggerOnline:
				case <-ctx.Done():
					return
				}
			}
			online = now
		}
	}
}
