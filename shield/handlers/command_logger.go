package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

const (
	handlerTimeout   = 10 * time.Second
	slowHandlerAfter = 2 * time.Second
)

type interaction interface {
	User() discord.User
}

// run executes fn with the shared start/complete/slow/timeout logging.
func run(kind, name string, e interaction, fn func() error) error {
	start := time.Now()
	user := e.User()

	slog.Debug(kind+" started",
		slog.String("type", kind),
		slog.String("name", name),
		slog.String("user_id", user.ID.String()),
		slog.String("user_name", user.Username),
	)

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	attrs := []any{
		slog.String("type", kind),
		slog.String("name", name),
		slog.String("user_id", user.ID.String()),
		slog.String("user_name", user.Username),
	}

	select {
	case err := <-done:
		duration := time.Since(start)
		attrs = append(attrs, slog.Duration("took", duration))
		switch {
		case err != nil:
			slog.Error(kind+" failed", append(attrs, slog.Any("error", err), slog.String("status", "failed"))...)
		case duration > slowHandlerAfter:
			slog.Warn(kind+" executed slowly", append(attrs, slog.String("status", "slow"))...)
		default:
			slog.Info(kind+" completed", append(attrs, slog.String("status", "success"))...)
		}
		return err

	case <-time.After(handlerTimeout):
		slog.Error(kind+" timed out", append(attrs,
			slog.String("status", "timeout"),
			slog.Duration("timeout", handlerTimeout),
		)...)
		return fmt.Errorf("%s %s timed out after %s", kind, name, handlerTimeout)
	}
}

// WrapWithLogging wraps a command handler with logging functionality
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return run("cmd", name, e, func() error { return h(e) })
	}
}

// WrapComponentWithLogging wraps a component handler with logging functionality
func WrapComponentWithLogging(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		return run("component", name, e, func() error { return h(e) })
	}
}

func WrapModalWithLogging(name string, h handler.ModalHandler) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		return run("component", name, e, func() error { return h(e) })
	}
}
