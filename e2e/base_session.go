package e2e

import (
	"bufio"
	"chat-client/client"
	"chat-client/domain"
	"chat-client/projection"
	"chat-client/render"
	"chat-client/runtime"
	"chat-client/runtime/workers"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseSessionSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSessionSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Header prints a colorized step header in the test logs.
func (s *BaseSessionSuite) Header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Harness is one client session connected to a fake server through an
// in-memory pipe.
type Harness struct {
	Session  *runtime.Session
	Reader   *runtime.SessionReader
	State    *runtime.RunState
	Renderer *recordingRenderer
	Server   net.Conn
	Lines    chan string
	Done     chan error
}

// StartSession wires a session exactly like cmd/client does, minus the TCP dial.
func (s *BaseSessionSuite) StartSession(ctx context.Context) *Harness {
	log := slog.Default()
	clientConn, serverConn := net.Pipe()

	state := runtime.NewRunState()
	renderer := &recordingRenderer{inner: render.NewTerminalRenderer(io.Discard, s.Config.Colours)}
	commands := client.NewCommandChannel(log, client.WriteHalf(clientConn), 16, s.Config.ByeGraceDelay)
	session := runtime.NewSession(log, s.Config.Username, domain.NewOrdering(), renderer, commands, state, nil)
	reader := runtime.NewSessionReader(log, clientConn, state, session)

	h := &Harness{
		Session:  session,
		Reader:   reader,
		State:    state,
		Renderer: renderer,
		Server:   serverConn,
		Lines:    make(chan string, 16),
		Done:     make(chan error, 1),
	}
	go func() {
		scanner := bufio.NewScanner(serverConn)
		for scanner.Scan() {
			h.Lines <- scanner.Text()
		}
		close(h.Lines)
	}()
	go func() {
		h.Done <- workers.NewSupervisor(log).Add(reader, commands).Run(ctx)
	}()
	return h
}

type recordingRenderer struct {
	mu      sync.Mutex
	inner   *render.TerminalRenderer
	views   []projection.View
	rosters []domain.RosterChange
}

func (r *recordingRenderer) Render(ctx context.Context, view projection.View) error {
	r.mu.Lock()
	r.views = append(r.views, view)
	r.mu.Unlock()
	return r.inner.Render(ctx, view)
}

func (r *recordingRenderer) RosterChanged(change domain.RosterChange) {
	r.mu.Lock()
	r.rosters = append(r.rosters, change)
	r.mu.Unlock()
	r.inner.RosterChanged(change)
}

func (r *recordingRenderer) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *recordingRenderer) LastView() projection.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return projection.View{}
	}
	return r.views[len(r.views)-1]
}
