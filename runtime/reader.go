package runtime

import (
	"chat-client/contract"
	apperrors "chat-client/errors"
	"chat-client/wire"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ReaderState is the lifecycle of a SessionReader:
// Starting -> Reading -> (Stopping | Failed) -> Stopped.
type ReaderState int32

const (
	Starting ReaderState = iota
	Reading
	Stopping
	Failed
	Stopped
)

func (s ReaderState) String() string {
	switch s {
	case Starting:
		return "STARTING"
	case Reading:
		return "READING"
	case Stopping:
		return "STOPPING"
	case Failed:
		return "FAILED"
	case Stopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("ReaderState(%d)", int32(s))
	}
}

// SessionReader pulls messages off the input stream and hands them to a sink
// until the stream ends or the run flag is stopped.
//
// The run flag is only checked between two reads. A read blocked on the
// stream is not interrupted by stopping the flag: whoever stops the session
// must also close the transport to unblock it.
type SessionReader struct {
	log     *slog.Logger
	source  io.ReadCloser
	state   *RunState
	sink    contract.MessageSink
	open    contract.DecoderFactory
	decoder contract.MessageDecoder
	current atomic.Int32
	once    sync.Once
}

func NewSessionReader(log *slog.Logger, source io.ReadCloser, state *RunState, sink contract.MessageSink) *SessionReader {
	return &SessionReader{
		log:    log,
		source: source,
		state:  state,
		sink:   sink,
		open:   openWireDecoder,
	}
}

// WithDecoderFactory replaces the wire decoder.
func (r *SessionReader) WithDecoderFactory(open contract.DecoderFactory) *SessionReader {
	r.open = open
	return r
}

func (r *SessionReader) State() ReaderState {
	return ReaderState(r.current.Load())
}

// Run reads until the session ends. It returns nil on every stream end and
// an error wrapping errors.ErrInputStream when the stream cannot be opened,
// in which case the run flag is stopped and the session cannot go on.
// Run may be called again after a panic: it resumes on the same decoder.
func (r *SessionReader) Run(ctx context.Context) error {
	if r.decoder == nil {
		r.setState(Starting)
		decoder, err := r.open(r.source)
		if err != nil {
			r.log.Error("Unable to open input stream", "error", err)
			r.setState(Failed)
			r.state.Stop()
			r.cleanup()
			if !errors.Is(err, apperrors.ErrInputStream) {
				err = fmt.Errorf("%w: %w", apperrors.ErrInputStream, err)
			}
			return err
		}
		r.decoder = decoder
	}

	r.setState(Reading)
	end := r.read(ctx)
	r.setState(end)

	if r.state.IsRunning() {
		r.log.Info("Changing run state at the end of the session")
		r.state.Stop()
	}
	r.cleanup()
	return nil
}

// read returns Stopping for an orderly end and Failed for a broken stream.
func (r *SessionReader) read(ctx context.Context) ReaderState {
	for r.state.IsRunning() {
		message, err := r.decoder.Decode()
		switch {
		case errors.Is(err, apperrors.ErrMalformedFrame), errors.Is(err, apperrors.ErrFrameTooLarge):
			r.log.Warn("Unexpected payload on input stream", "error", err)
			return Failed
		case err != nil:
			r.log.Warn("Input stream read failed", "error", err)
			return Failed
		case message == nil:
			r.log.Info("End of session received")
			return Stopping
		}
		r.log.Debug("Message received", "author", message.Author())
		r.sink.Deliver(ctx, *message)
	}
	r.log.Info("Run state stopped, leaving reader loop")
	return Stopping
}

// cleanup releases the input stream once; a close failure is only logged.
func (r *SessionReader) cleanup() {
	r.once.Do(func() {
		r.log.Info("Closing input stream")
		if err := r.source.Close(); err != nil {
			r.log.Warn("Failed to close input stream", "error", err)
		}
		r.setState(Stopped)
	})
}

func (r *SessionReader) setState(s ReaderState) {
	r.current.Store(int32(s))
	r.log.Debug("Reader state changed", "state", s)
}

func openWireDecoder(r io.Reader) (contract.MessageDecoder, error) {
	decoder, err := wire.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return decoder, nil
}
