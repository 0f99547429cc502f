// Package client holds the outbound half of the connection to the chat server.
package client

import (
	"bufio"
	"chat-client/domain"
	"chat-client/errors"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Command verbs understood by the server. Anything else is a chat line.
const (
	ByeCommand  = "bye"
	KickCommand = "Kick"
)

const DefaultByeGraceDelay = time.Second

// CommandChannel sends line oriented commands to the server.
// Calls only enqueue; Run writes the queue out. Nothing waits for an
// acknowledgment, a broken connection is observed by the session reader.
// CommandChannel is safe for concurrent use by multiple goroutines.
type CommandChannel struct {
	log    *slog.Logger
	out    io.WriteCloser
	queue  chan string
	grace  time.Duration
	mu     sync.Mutex
	closed bool
	failed atomic.Bool
}

func NewCommandChannel(log *slog.Logger, out io.WriteCloser, bufferSize int, grace time.Duration) *CommandChannel {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &CommandChannel{
		log:   log,
		out:   out,
		queue: make(chan string, bufferSize),
		grace: grace,
	}
}

// SendText sends free chat content. Line breaks are flattened to spaces,
// blank content is refused with errors.ErrEmptyContent.
func (c *CommandChannel) SendText(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyContent
	}
	return c.enqueue(strings.Join(strings.FieldsFunc(content, isLineBreak), " "))
}

// SendControl sends "command arg1 arg2...".
func (c *CommandChannel) SendControl(command string, args ...string) error {
	if strings.TrimSpace(command) == "" {
		return errors.ErrEmptyContent
	}
	return c.enqueue(strings.Join(append([]string{command}, args...), " "))
}

// Kick asks the server to disconnect username.
func (c *CommandChannel) Kick(username string) error {
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}
	return c.SendControl(KickCommand, username)
}

// Bye sends the disconnect notice, leaves the writer the grace delay to flush
// it, then closes the channel. Delivery is best effort.
func (c *CommandChannel) Bye(ctx context.Context) error {
	if err := c.SendControl(ByeCommand); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.grace):
	}
	c.Close()
	return nil
}

// Close stops accepting commands. Run drains what is queued, then closes
// the underlying writer.
func (c *CommandChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.queue)
}

func (c *CommandChannel) enqueue(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrChannelClosed
	}
	select {
	case c.queue <- line:
		return nil
	default:
		c.log.Warn("Outbound queue full, command dropped", "command", line)
		return errors.ErrOutboundFull
	}
}

// Run writes queued commands until the channel is closed or ctx is done.
// After the first write failure every later command is dropped.
func (c *CommandChannel) Run(ctx context.Context) error {
	w := bufio.NewWriter(c.out)
	defer func() {
		if err := c.out.Close(); err != nil {
			c.log.Debug("Closing outbound stream failed", "error", err)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			c.log.Debug("Context done, stopping command writer")
			return nil
		case line, ok := <-c.queue:
			if !ok {
				c.log.Debug("Command channel closed")
				return nil
			}
			if c.failed.Load() {
				c.log.Debug("Command dropped after write failure", "command", line)
				continue
			}
			if err := c.write(w, line); err != nil {
				c.failed.Store(true)
				c.log.Warn("Sending command failed", "error", err)
			}
		}
	}
}

func (c *CommandChannel) write(w *bufio.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	return w.Flush()
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}
