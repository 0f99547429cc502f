// Package domain contains core concepts of the chat client.
// This file defines Message values received from the server.
// Messages are immutable once built; ordering lives in Ordering.
package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006/01/02 15:04:05"

// Message represents an immutable chat event.
// An empty author marks a system message sent by the server itself.
type Message struct {
	at      time.Time
	author  string
	content string
}

// NewMessage builds a message. A zero timestamp is replaced by the current time.
func NewMessage(at time.Time, author, content string) Message {
	if at.IsZero() {
		at = time.Now()
	}
	return Message{at: at, author: author, content: content}
}

// NewSystemMessage builds a message without author.
func NewSystemMessage(at time.Time, content string) Message {
	return NewMessage(at, "", content)
}

func (m Message) At() time.Time   { return m.at }
func (m Message) Author() string  { return m.author }
func (m Message) Content() string { return m.content }

func (m Message) HasAuthor() bool { return m.author != "" }

// String renders the message as "[yyyy/MM/dd HH:mm:ss] author > content".
func (m Message) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(m.at.Format(dateLayout))
	sb.WriteString("] ")
	if m.HasAuthor() {
		sb.WriteString(m.author)
		sb.WriteString(" > ")
	}
	sb.WriteString(m.content)
	return sb.String()
}
