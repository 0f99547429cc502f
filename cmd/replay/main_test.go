package main

import (
	"bytes"
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/wire"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, messages ...domain.Message) *bytes.Buffer {
	var buf bytes.Buffer
	encoder, err := wire.NewEncoder(&buf)
	require.NoError(t, err)
	for _, m := range messages {
		require.NoError(t, encoder.Encode(m))
	}
	require.NoError(t, encoder.EncodeEnd())
	return &buf
}

func TestReplay_SortsByAuthor(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	in := capture(t,
		domain.NewMessage(now, "carol", "first"),
		domain.NewMessage(now.Add(time.Second), "bob", "second"),
	)

	var out bytes.Buffer
	req.NoError(replay(in, &out, "author", ""))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	req.Len(lines, 3)
	req.Contains(lines[1], "bob")
	req.Contains(lines[2], "carol")
}

func TestReplay_FiltersAuthors(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	in := capture(t,
		domain.NewMessage(now, "carol", "first"),
		domain.NewMessage(now.Add(time.Second), "bob", "second"),
		domain.NewSystemMessage(now.Add(2*time.Second), "closing"),
	)

	var out bytes.Buffer
	req.NoError(replay(in, &out, "date", "bob"))

	req.Contains(out.String(), "second")
	req.NotContains(out.String(), "first")
	req.NotContains(out.String(), "closing")
}

func TestReplay_FiltersAuthors_WithSpaces(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	in := capture(t,
		domain.NewMessage(now, "carol", "first"),
		domain.NewMessage(now.Add(time.Second), "bob", "second"),
		domain.NewMessage(now.Add(2*time.Second), "dave", "third"),
	)

	var out bytes.Buffer
	req.NoError(replay(in, &out, "date", "bob, carol ,"))

	req.Contains(out.String(), "first")
	req.Contains(out.String(), "second")
	req.NotContains(out.String(), "third")
}

func TestReplay_Errors(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer

	req.ErrorIs(replay(strings.NewReader("junk"), &out, "date", ""), errors.ErrInputStream)
	req.ErrorIs(replay(capture(t), &out, "colour", ""), errors.ErrUnknownCriterion)
}
