package client

import (
	"bytes"
	"chat-client/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// bufferCloser is a concurrency safe writer remembering whether it was closed.
type bufferCloser struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
	fail   bool
}

func (b *bufferCloser) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return 0, fmt.Errorf("broken pipe")
	}
	return b.buf.Write(p)
}

func (b *bufferCloser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *bufferCloser) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *bufferCloser) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func runChannel(t *testing.T, channel *CommandChannel) chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- channel.Run(context.Background()) }()
	return done
}

func TestCommandChannel_WritesLinesInOrder(t *testing.T) {
	req := require.New(t)
	out := &bufferCloser{}
	channel := NewCommandChannel(slog.Default(), out, 8, time.Millisecond)
	done := runChannel(t, channel)

	// When
	req.NoError(channel.SendText("hello\nworld"))
	req.NoError(channel.Kick("bob"))
	req.NoError(channel.SendControl("whois", "clara"))
	channel.Close()

	// Then
	req.NoError(<-done)
	req.Equal("hello world\nKick bob\nwhois clara\n", out.String())
	req.True(out.IsClosed())
}

func TestCommandChannel_RefusesEmptyText_And_BadUsernames(t *testing.T) {
	req := require.New(t)
	channel := NewCommandChannel(slog.Default(), &bufferCloser{}, 8, time.Millisecond)

	req.ErrorIs(channel.SendText("  \n "), errors.ErrEmptyContent)
	req.ErrorIs(channel.Kick(""), errors.ErrInvalidUsername)
	req.ErrorIs(channel.Kick("bob smith"), errors.ErrInvalidUsername)
}

func TestCommandChannel_Bye_WaitsGraceThenCloses(t *testing.T) {
	req := require.New(t)
	out := &bufferCloser{}
	grace := 50 * time.Millisecond
	channel := NewCommandChannel(slog.Default(), out, 8, grace)
	done := runChannel(t, channel)

	start := time.Now()
	req.NoError(channel.Bye(context.Background()))

	req.GreaterOrEqual(time.Since(start), grace)
	req.NoError(<-done)
	req.Equal("bye\n", out.String())
	req.ErrorIs(channel.SendText("too late"), errors.ErrChannelClosed)
}

func TestCommandChannel_Bye_ShortenedByContext(t *testing.T) {
	req := require.New(t)
	channel := NewCommandChannel(slog.Default(), &bufferCloser{}, 8, time.Hour)
	done := runChannel(t, channel)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req.NoError(channel.Bye(ctx))
	req.NoError(<-done)
}

func TestCommandChannel_WriteFailure_DropsLaterCommands(t *testing.T) {
	req := require.New(t)
	out := &bufferCloser{fail: true}
	channel := NewCommandChannel(slog.Default(), out, 8, time.Millisecond)
	done := runChannel(t, channel)

	// Fire and forget: the caller never sees the failure
	req.NoError(channel.SendText("first"))
	req.NoError(channel.SendText("second"))
	channel.Close()

	req.NoError(<-done)
	req.Empty(out.String())
}

func TestCommandChannel_FullQueue(t *testing.T) {
	req := require.New(t)
	channel := NewCommandChannel(slog.Default(), &bufferCloser{}, 1, time.Millisecond)

	// Given no writer running
	req.NoError(channel.SendText("one"))
	req.ErrorIs(channel.SendText("two"), errors.ErrOutboundFull)
}
