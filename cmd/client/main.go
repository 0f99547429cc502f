package main

import (
	"chat-client/client"
	"chat-client/domain"
	apperrors "chat-client/errors"
	"chat-client/internal"
	"chat-client/render"
	"chat-client/repositories"
	"chat-client/runtime"
	"chat-client/runtime/workers"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

// Exit codes for the client application.
const (
	exitOK          = 0
	exitRuntime     = 1
	exitConfig      = 2
	exitInputStream = 3
)

type overrides struct {
	addr     string
	name     string
	logLevel string
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code := exitOK
	if err := newRootCommand(&code).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		if code == exitOK {
			code = exitRuntime
		}
	}
	os.Exit(code)
}

func newRootCommand(code *int) *cobra.Command {
	var flags overrides
	cmd := &cobra.Command{
		Use:           "chat-client",
		Short:         "Join a chat server, keep the roster and sort the conversation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := run(cmd.Context(), flags)
			*code = c
			return err
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "server address, overrides CHAT_SERVER_ADDR")
	cmd.Flags().StringVar(&flags.name, "name", "", "user name, overrides CHAT_USERNAME")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	return cmd
}

// run handles the client lifecycle: configuration, connection, session
// workers and the disconnect sequence.
func run(parent context.Context, flags overrides) (int, error) {
	// 1. Load configuration from .env and environment variables.
	_ = godotenv.Load()
	if flags.logLevel != "" {
		_ = os.Setenv("LOG_LEVEL", flags.logLevel)
	}
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if flags.addr != "" {
		config.ServerAddress = flags.addr
	}
	if flags.name != "" {
		config.Username = flags.name
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Preferences (sort criteria, last user name).
	db, err := repositories.OpenBadger(config.PreferencesPath)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Debug("Closing BadgerDB...")
		_ = db.Close()
	}()
	prefs := repositories.NewPreferenceRepository(db, log)

	username, err := resolveUsername(config, prefs)
	if err != nil {
		return exitConfig, err
	}
	ordering, err := resolveOrdering(config, prefs)
	if err != nil {
		return exitConfig, err
	}

	// 3. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Establish connection to the chat server.
	conn, err := net.Dial("tcp", config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	// 5. Session wiring.
	state := runtime.NewRunState()
	commands := client.NewCommandChannel(log, client.WriteHalf(conn), config.OutboundBufferSize, config.ByeGraceDelay)
	renderer := render.NewTerminalRenderer(os.Stdout, config.Colours)
	session := runtime.NewSession(log, username, ordering, renderer, commands, state, prefs)
	reader := runtime.NewSessionReader(log, conn, state, session)

	// The server expects the user name as the first line.
	if err := commands.SendText(username); err != nil {
		return exitRuntime, err
	}

	sup := workers.NewSupervisor(log)
	supervised := make(chan error, 1)
	// Workers outlive the signal: the bye still has to be written after Ctrl+C.
	go func() { supervised <- sup.Add(reader, commands).Run(context.WithoutCancel(ctx)) }()

	go readInput(ctx, log, os.Stdin, os.Stdout, session)

	log.Info(fmt.Sprintf(">>> Connected to %s as %s (Ctrl+C to quit)...", config.ServerAddress, username))

	// 6. Wait for the user or the server to end the session.
	awaitEnd(ctx, log, session, config.ByeGraceDelay+graceMargin)

	// The reader only observes the run flag between reads: closing the
	// connection is what unblocks it.
	state.Stop()
	_ = conn.Close()
	sup.Stop()

	if err := <-supervised; err != nil {
		if errors.Is(err, apperrors.ErrInputStream) {
			return exitInputStream, err
		}
		return exitRuntime, err
	}
	log.Info("Session ended", "state", reader.State())
	return exitOK, nil
}

// awaitEnd blocks until a signal, the user or the server ends the session,
// then says bye. After a /quit the bye already went out.
func awaitEnd(ctx context.Context, log *slog.Logger, session *runtime.Session, timeout time.Duration) {
	select {
	case <-ctx.Done():
		log.Info("Stopping client...")
	case <-session.RunState().Done():
		log.Info("Session ended")
	}
	quitCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := session.Quit(quitCtx)
	switch {
	case errors.Is(err, apperrors.ErrChannelClosed):
		log.Debug("Bye already sent")
	case err != nil:
		log.Warn("Bye not sent", "error", err)
	}
}

func resolveUsername(config internal.Config, prefs repositories.PreferenceRepository) (string, error) {
	if config.Username != "" {
		return config.Username, prefs.SaveUsername(config.Username)
	}
	stored, err := prefs.LoadUsername()
	if err != nil {
		return "", err
	}
	if stored == "" {
		return "", apperrors.ErrMissingUsername
	}
	return stored, nil
}

func resolveOrdering(config internal.Config, prefs repositories.PreferenceRepository) (*domain.Ordering, error) {
	criteria, err := config.Criteria()
	if err != nil {
		return nil, err
	}
	if criteria == nil {
		if criteria, err = prefs.LoadCriteria(); err != nil {
			return nil, err
		}
	}
	return domain.NewOrdering(criteria...), nil
}
