//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-client/domain"
	"chat-client/projection"
	"context"
	"io"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context) error
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Renderer is the presentation layer. It redraws from scratch on every call.
type Renderer interface {
	Render(ctx context.Context, view projection.View) error
	RosterChanged(change domain.RosterChange)
}

// CommandSender is the outbound path to the server. Every call is
// fire-and-forget: a delivery failure only shows up later on the input stream.
type CommandSender interface {
	SendText(content string) error
	SendControl(command string, args ...string) error
	Kick(username string) error
	Bye(ctx context.Context) error
}

// MessageDecoder reads one message per call; (nil, nil) means end of session.
type MessageDecoder interface {
	Decode() (*domain.Message, error)
}

// DecoderFactory opens a decoder over an established input stream.
type DecoderFactory func(r io.Reader) (MessageDecoder, error)

// MessageSink receives every message read from the server.
type MessageSink interface {
	Deliver(ctx context.Context, message domain.Message)
}

// PreferenceStore keeps user preferences between launches.
// Message history is never stored.
type PreferenceStore interface {
	SaveCriteria(criteria []domain.Criterion) error
	LoadCriteria() ([]domain.Criterion, error)
	SaveUsername(username string) error
	LoadUsername() (string, error)
}
