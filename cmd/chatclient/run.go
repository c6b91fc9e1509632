package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"productivity-chatbot/internal/client/analytics"
	"productivity-chatbot/internal/client/channel"
	"productivity-chatbot/internal/client/history"
	"productivity-chatbot/internal/client/restchat"
	"productivity-chatbot/internal/client/session"
	"productivity-chatbot/internal/client/terminal"
	"productivity-chatbot/internal/client/widget"
	"productivity-chatbot/internal/config"
	redisClient "productivity-chatbot/internal/platform/redis"
)

var errQuit = errors.New("quit")

const helpText = "commands: /clear  /analytics  /reconnect  /quit"

func run(parent context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slots, closeSlots, err := openSlots(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlots()

	sess := session.New(cfg.Client.UserID)
	view := terminal.NewView(out)

	ch, err := channel.New(cfg.Client.ServerURL, sess.ID, channel.WithConnectTimeout(cfg.ConnectTimeout()))
	if err != nil {
		return err
	}
	w := widget.New(widget.Config{
		Session:   sess,
		View:      view,
		Transport: ch,
		Store:     history.NewStore(slots),
		Analytics: analytics.NewFetcher(cfg.Client.ServerURL),
		Poster:    restchat.New(cfg.Client.ServerURL),
		HTTPOnly:  cfg.Client.HTTPOnly,
	})
	ch.SetHandler(w.Handler())
	defer func() { _ = w.Close() }()

	log.Debug().Str("session_id", sess.ID).Str("server", cfg.Client.ServerURL).Msg("starting chat client")
	w.Start(ctx)
	view.Notify(channel.SeverityInfo, helpText)

	g, gctx := errgroup.WithContext(ctx)

	if !cfg.Client.HTTPOnly {
		triggers := make(chan channel.Trigger, 4)
		policy := channel.NewReconnectPolicy(ch)
		g.Go(func() error { return policy.Run(gctx, triggers) })
		g.Go(func() error {
			watchForeground(gctx, triggers)
			return nil
		})
		g.Go(func() error {
			interval := time.Duration(cfg.Client.ProbeIntervalSeconds) * time.Second
			watchNetwork(gctx, tcpProbe(cfg.Client.ServerURL), interval, triggers)
			return nil
		})
	}

	lines := readLines(in)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return errQuit
				}
				if err := handleLine(gctx, w, view, line); err != nil {
					return err
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// handleLine runs a slash command or sends the line as a chat message.
func handleLine(ctx context.Context, w *widget.Widget, view *terminal.View, line string) error {
	switch strings.TrimSpace(line) {
	case "/quit", "/exit":
		return errQuit
	case "/clear":
		w.ClearHistory(ctx)
	case "/analytics":
		w.ShowAnalytics(ctx)
	case "/reconnect":
		w.Reconnect(ctx)
	case "/help":
		view.Notify(channel.SeverityInfo, helpText)
	default:
		// rejections were already shown to the user
		_ = w.Send(ctx, line)
	}
	return nil
}

// readLines feeds stdin into a channel so the input loop can also watch ctx.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func openSlots(ctx context.Context, cfg *config.Config) (history.Slots, func(), error) {
	switch strings.ToLower(cfg.Client.HistoryBackend) {
	case "", "sqlite":
		slots, err := history.OpenSQLite(cfg.Client.HistoryPath)
		if err != nil {
			return nil, nil, err
		}
		return slots, func() { _ = slots.Close() }, nil
	case "redis":
		client, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return history.NewRedisSlots(client, 0), func() { _ = client.Close() }, nil
	case "memory":
		return history.NewMemorySlots(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Client.HistoryBackend)
	}
}

// watchForeground turns SIGCONT (resumed after Ctrl-Z) into a foreground
// trigger.
func watchForeground(ctx context.Context, triggers chan<- channel.Trigger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGCONT)
	defer signal.Stop(sigs)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigs:
			select {
			case triggers <- channel.TriggerForeground:
			default:
			}
		}
	}
}
