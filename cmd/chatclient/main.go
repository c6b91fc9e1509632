package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"productivity-chatbot/internal/config"
	"productivity-chatbot/internal/pkg/logging"
)

type options struct {
	serverURL      string
	userID         uint
	httpOnly       bool
	historyBackend string
	historyPath    string
	logLevel       string
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env failed")
	}

	if err := newRootCommand(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatclient",
		Short: "Terminal chat client for the productivity assistant",
		Long: "Connects to the chat server over a websocket, keeps a local copy of the\n" +
			"conversation and shows usage analytics. Type /help once connected.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, opts)

			level := cfg.App.LogLevel
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			logging.Setup(level, cfg.App.Env)
			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.serverURL, "server", "", "chat server base URL")
	flags.UintVar(&opts.userID, "user", 0, "user id sent with every message")
	flags.BoolVar(&opts.httpOnly, "http-only", false, "use POST /api/chat instead of the websocket")
	flags.StringVar(&opts.historyBackend, "history-backend", "", "local history store: memory, sqlite or redis")
	flags.StringVar(&opts.historyPath, "history-path", "", "sqlite file for local history")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// applyFlags lets explicitly set flags win over file and env config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *options) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Client.ServerURL = opts.serverURL
	}
	if flags.Changed("user") {
		cfg.Client.UserID = opts.userID
	}
	if flags.Changed("http-only") {
		cfg.Client.HTTPOnly = opts.httpOnly
	}
	if flags.Changed("history-backend") {
		cfg.Client.HistoryBackend = opts.historyBackend
	}
	if flags.Changed("history-path") {
		cfg.Client.HistoryPath = opts.historyPath
	}
}
