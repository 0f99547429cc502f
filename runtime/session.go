package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	apperrors "chat-client/errors"
	"chat-client/projection"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session is the client side state of one connection: ordering, roster,
// stored messages, the user's selection and filter toggle.
// User actions go through Handle, messages from the server through Deliver;
// both may run concurrently.
type Session struct {
	ID        uuid.UUID
	log       *slog.Logger
	self      string
	ordering  *domain.Ordering
	roster    *domain.Roster
	store     *projection.MessageStore
	selection *domain.Selection
	filtered  atomic.Bool
	renderer  contract.Renderer
	commands  contract.CommandSender
	state     *RunState
	prefs     contract.PreferenceStore
}

// NewSession adds self to the roster. prefs may be nil.
func NewSession(
	log *slog.Logger,
	self string,
	ordering *domain.Ordering,
	renderer contract.Renderer,
	commands contract.CommandSender,
	state *RunState,
	prefs contract.PreferenceStore,
) *Session {
	id := uuid.New()
	s := &Session{
		ID:        id,
		log:       log.With("session", id.String()),
		self:      self,
		ordering:  ordering,
		roster:    domain.NewRoster(),
		store:     projection.NewMessageStore(ordering),
		selection: domain.NewSelection(),
		renderer:  renderer,
		commands:  commands,
		state:     state,
		prefs:     prefs,
	}
	s.roster.OnChange(s.rosterChanged)
	s.roster.Add(self)
	return s
}

func (s *Session) Self() string { return s.self }
func (s *Session) Ordering() *domain.Ordering { return s.ordering }
func (s *Session) Roster() *domain.Roster { return s.roster }
func (s *Session) Store() *projection.MessageStore { return s.store }
func (s *Session) Selection() *domain.Selection { return s.selection }
func (s *Session) Filtering() bool { return s.filtered.Load() }
func (s *Session) RunState() *RunState { return s.state }

// Deliver stores a message from the server, learns its author and redraws.
func (s *Session) Deliver(ctx context.Context, message domain.Message) {
	s.store.Append(message)
	if message.HasAuthor() && s.roster.Add(message.Author()) {
		s.log.Debug("New participant", "name", message.Author())
	}
	s.Refresh(ctx)
}

// View is the current message list: sorted, and restricted to the selected
// authors while the filter is on.
func (s *Session) View() projection.View {
	view := projection.View{
		Criteria: s.ordering.Criteria(),
		Filtered: s.filtered.Load(),
		Selected: s.selection.Names(),
	}
	if view.Filtered {
		view.Messages = s.store.Filtered(projection.SelectedAuthors(s.selection))
	} else {
		view.Messages = s.store.Sorted()
	}
	return view
}

// Refresh hands the current view to the renderer. Render failures are
// presentation bugs: logged, never propagated.
func (s *Session) Refresh(ctx context.Context) {
	if err := s.renderer.Render(ctx, s.View()); err != nil {
		s.log.Warn("Render failed", "error", err)
	}
}

// Handle runs one user command.
func (s *Session) Handle(ctx context.Context, cmd domain.Command) error {
	s.log.Debug("Handling command", "command", cmd.Name())
	switch c := cmd.(type) {
	case domain.ClearCommand:
		s.store.Clear()
		s.Refresh(ctx)
	case domain.ClearSelectedCommand:
		removed := s.store.RemoveWhere(projection.SelectedAuthors(s.selection))
		s.log.Debug("Messages of selected users removed", "count", removed)
		s.Refresh(ctx)
	case domain.KickCommand:
		return s.kickSelected()
	case domain.FilterCommand:
		s.filtered.Store(c.Enabled)
		s.Refresh(ctx)
	case domain.SortByCommand:
		if !c.Criterion.Valid() {
			return fmt.Errorf("%w: %v", apperrors.ErrUnknownCriterion, c.Criterion)
		}
		s.ordering.Only(c.Criterion)
		s.criteriaChanged(ctx)
	case domain.AddCriterionCommand:
		if !c.Criterion.Valid() {
			return fmt.Errorf("%w: %v", apperrors.ErrUnknownCriterion, c.Criterion)
		}
		if s.ordering.Add(c.Criterion) {
			s.criteriaChanged(ctx)
		}
	case domain.RemoveCriterionCommand:
		if s.ordering.Remove(c.Criterion) {
			s.criteriaChanged(ctx)
		}
	case domain.SelectCommand:
		names := s.selection.SelectIndices(s.roster, c.Indices...)
		s.log.Debug("Selection changed", "names", names)
		if s.filtered.Load() {
			s.Refresh(ctx)
		}
	case domain.RemoveUserCommand:
		if !s.roster.Remove(c.Index) {
			s.log.Debug("No participant at position", "index", c.Index)
			return nil
		}
		s.Refresh(ctx)
	case domain.ClearRosterCommand:
		s.roster.Clear()
		s.Refresh(ctx)
	case domain.SayCommand:
		return s.commands.SendText(c.Text)
	case domain.QuitCommand:
		return s.Quit(ctx)
	default:
		return fmt.Errorf("%w: %T", apperrors.ErrUnknownCommand, cmd)
	}
	return nil
}

// Quit says bye, waits for the grace delay and stops the run flag.
// Closing the transport to unblock the reader is left to the caller.
func (s *Session) Quit(ctx context.Context) error {
	s.log.Info("Sending bye")
	err := s.commands.Bye(ctx)
	if s.state.Stop() {
		s.log.Info("Run state stopped by user")
	}
	return err
}

// kickSelected asks the server to kick every selected user except oneself.
// The roster is left alone until the server reports the departure.
func (s *Session) kickSelected() error {
	var errs []error
	for _, name := range s.selection.Names() {
		if name == s.self {
			continue
		}
		if err := s.commands.Kick(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) criteriaChanged(ctx context.Context) {
	if s.prefs != nil {
		if err := s.prefs.SaveCriteria(s.ordering.Criteria()); err != nil {
			s.log.Warn("Saving sort preference failed", "error", err)
		}
	}
	s.Refresh(ctx)
}

// rosterChanged runs under the roster lock.
func (s *Session) rosterChanged(change domain.RosterChange) {
	s.selection.Retain(change.Names)
	s.renderer.RosterChanged(change)
}
