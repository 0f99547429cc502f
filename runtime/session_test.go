package runtime

import (
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/mocks"
	"chat-client/projection"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sessionFixture struct {
	session  *Session
	renderer *mocks.MockRenderer
	commands *mocks.MockCommandSender
	prefs    *mocks.MockPreferenceStore
	views    []projection.View
}

func newSessionFixture(t *testing.T) *sessionFixture {
	ctrl := gomock.NewController(t)
	f := &sessionFixture{
		renderer: mocks.NewMockRenderer(ctrl),
		commands: mocks.NewMockCommandSender(ctrl),
		prefs:    mocks.NewMockPreferenceStore(ctrl),
	}
	f.renderer.EXPECT().RosterChanged(gomock.Any()).AnyTimes()
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, view projection.View) error {
			f.views = append(f.views, view)
			return nil
		}).AnyTimes()
	f.session = NewSession(slog.Default(), "alice", domain.NewOrdering(), f.renderer, f.commands, NewRunState(), f.prefs)
	return f
}

func (f *sessionFixture) lastView() projection.View {
	return f.views[len(f.views)-1]
}

func authors(messages []domain.Message) []string {
	result := make([]string, 0, len(messages))
	for _, m := range messages {
		result = append(result, m.Author())
	}
	return result
}

func TestSession_Deliver_LearnsAuthors_And_Redraws(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	now := time.Now()

	// Given a fresh session, only the user is known
	req.Equal([]string{"alice"}, f.session.Roster().Names())

	// When two messages arrive
	f.session.Deliver(ctx, domain.NewMessage(now, "bob", "hi"))
	f.session.Deliver(ctx, domain.NewMessage(now.Add(time.Second), "alice", "yo"))

	// Then
	req.Equal([]string{"alice", "bob"}, f.session.Roster().Names())
	req.Equal(2, f.session.Store().Len())
	req.Len(f.views, 2)
	req.Equal([]string{"bob", "alice"}, authors(f.lastView().Messages))
}

func TestSession_Deliver_SystemMessage_DoesNotTouchRoster(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	f.session.Deliver(context.Background(), domain.NewSystemMessage(time.Now(), "server restarting"))

	req.Equal([]string{"alice"}, f.session.Roster().Names())
	req.Equal(1, f.session.Store().Len())
}

func TestSession_ClearSelected_KeepsOthers(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.session.Deliver(ctx, domain.NewMessage(now, "bob", "a"))
	f.session.Deliver(ctx, domain.NewMessage(now.Add(time.Second), "carol", "b"))
	f.session.Deliver(ctx, domain.NewMessage(now.Add(2*time.Second), "bob", "c"))
	f.session.Deliver(ctx, domain.NewSystemMessage(now.Add(3*time.Second), "notice"))

	// Given bob selected: roster is [alice bob carol]
	req.NoError(f.session.Handle(ctx, domain.SelectCommand{Indices: []int{1}}))

	// When
	req.NoError(f.session.Handle(ctx, domain.ClearSelectedCommand{}))

	// Then
	req.Equal([]string{"carol", ""}, authors(f.lastView().Messages))
}

func TestSession_Clear_EmptiesStore(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	f.session.Deliver(ctx, domain.NewMessage(time.Now(), "bob", "a"))

	req.NoError(f.session.Handle(ctx, domain.ClearCommand{}))

	req.Zero(f.session.Store().Len())
	req.Empty(f.lastView().Messages)
	req.Equal([]string{"alice", "bob"}, f.session.Roster().Names())
}

func TestSession_Kick_SkipsSelf_And_LeavesRoster(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	f.session.Deliver(ctx, domain.NewMessage(time.Now(), "bob", "a"))
	req.NoError(f.session.Handle(ctx, domain.SelectCommand{Indices: []int{0, 1}}))

	// Then only bob is kicked
	f.commands.EXPECT().Kick("bob").Return(nil)

	req.NoError(f.session.Handle(ctx, domain.KickCommand{}))
	req.Equal([]string{"alice", "bob"}, f.session.Roster().Names())
}

func TestSession_Kick_ReportsSendFailure(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	f.session.Deliver(ctx, domain.NewMessage(time.Now(), "bob", "a"))
	req.NoError(f.session.Handle(ctx, domain.SelectCommand{Indices: []int{1}}))

	f.commands.EXPECT().Kick("bob").Return(errors.ErrChannelClosed)

	req.ErrorIs(f.session.Handle(ctx, domain.KickCommand{}), errors.ErrChannelClosed)
}

func TestSession_Filter_ShowsSelectedAuthorsOnly(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.session.Deliver(ctx, domain.NewMessage(now, "bob", "a"))
	f.session.Deliver(ctx, domain.NewMessage(now.Add(time.Second), "carol", "b"))

	req.NoError(f.session.Handle(ctx, domain.FilterCommand{Enabled: true}))
	// Nothing selected yet
	req.Empty(f.lastView().Messages)
	req.True(f.lastView().Filtered)

	// Selection redraws while filtering
	req.NoError(f.session.Handle(ctx, domain.SelectCommand{Indices: []int{2}}))
	req.Equal([]string{"carol"}, authors(f.lastView().Messages))
	req.Equal([]string{"carol"}, f.lastView().Selected)

	req.NoError(f.session.Handle(ctx, domain.FilterCommand{Enabled: false}))
	req.Len(f.lastView().Messages, 2)
}

func TestSession_SortBy_SavesPreference(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.session.Deliver(ctx, domain.NewMessage(now, "carol", "a"))
	f.session.Deliver(ctx, domain.NewMessage(now.Add(time.Second), "bob", "b"))

	f.prefs.EXPECT().SaveCriteria([]domain.Criterion{domain.Author}).Return(nil)

	req.NoError(f.session.Handle(ctx, domain.SortByCommand{Criterion: domain.Author}))

	req.Equal([]string{"bob", "carol"}, authors(f.lastView().Messages))
	req.Equal([]domain.Criterion{domain.Author}, f.lastView().Criteria)
}

func TestSession_AddRemoveCriterion(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()

	gomock.InOrder(
		f.prefs.EXPECT().SaveCriteria([]domain.Criterion{domain.Date, domain.Author}).Return(nil),
		f.prefs.EXPECT().SaveCriteria([]domain.Criterion{domain.Author}).Return(fmt.Errorf("disk full")),
	)

	req.NoError(f.session.Handle(ctx, domain.AddCriterionCommand{Criterion: domain.Author}))
	// Already present: no save
	req.NoError(f.session.Handle(ctx, domain.AddCriterionCommand{Criterion: domain.Author}))
	// A failed save is only logged
	req.NoError(f.session.Handle(ctx, domain.RemoveCriterionCommand{Criterion: domain.Date}))
	req.Equal([]domain.Criterion{domain.Author}, f.session.Ordering().Criteria())
}

func TestSession_InvalidCriterion(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	err := f.session.Handle(context.Background(), domain.SortByCommand{Criterion: domain.Criterion(42)})
	req.ErrorIs(err, errors.ErrUnknownCriterion)
	req.Equal([]domain.Criterion{domain.Date}, f.session.Ordering().Criteria())
}

type unknownCommand struct{}

func (unknownCommand) Name() string { return "unknown" }

func TestSession_UnknownCommand(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	req.ErrorIs(f.session.Handle(context.Background(), unknownCommand{}), errors.ErrUnknownCommand)
}

func TestSession_Say_SendsText(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	f.commands.EXPECT().SendText("hello").Return(nil)

	req.NoError(f.session.Handle(context.Background(), domain.SayCommand{Text: "hello"}))
}

func TestSession_Quit_SaysBye_And_StopsRunState(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	f.commands.EXPECT().Bye(gomock.Any()).Return(nil)

	req.NoError(f.session.Handle(context.Background(), domain.QuitCommand{}))
	req.False(f.session.RunState().IsRunning())
	select {
	case <-f.session.RunState().Done():
	default:
		req.Fail("run state not done")
	}
}

func TestSession_RenderError_IsSwallowed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	commands := mocks.NewMockCommandSender(ctrl)
	renderer.EXPECT().RosterChanged(gomock.Any()).AnyTimes()
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(errors.ErrRender)

	// Given a session without preference store
	session := NewSession(slog.Default(), "alice", domain.NewOrdering(), renderer, commands, NewRunState(), nil)

	session.Deliver(context.Background(), domain.NewMessage(time.Now(), "bob", "hi"))
	req.Equal(1, session.Store().Len())
}

func TestSession_RosterChange_DropsStaleSelection(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	f.session.Deliver(ctx, domain.NewMessage(time.Now(), "bob", "hi"))
	req.NoError(f.session.Handle(ctx, domain.SelectCommand{Indices: []int{1}}))

	// When bob leaves the roster
	f.session.Roster().Remove(1)

	req.True(f.session.Selection().IsEmpty())
}

func TestSession_RemoveUser_After_KickConfirmation(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.session.Deliver(ctx, domain.NewMessage(now, "bob", "hi"))
	f.session.Deliver(ctx, domain.NewMessage(now.Add(time.Second), "carol", "hello"))

	// Given bob selected, kicked, and the filter on
	req.NoError(f.session.Handle(ctx, domain.SelectCommand{Indices: []int{1, 2}}))
	req.NoError(f.session.Handle(ctx, domain.FilterCommand{Enabled: true}))
	f.commands.EXPECT().Kick("bob").Return(nil)
	f.commands.EXPECT().Kick("carol").Return(nil)
	req.NoError(f.session.Handle(ctx, domain.KickCommand{}))
	f.session.Deliver(ctx, domain.NewSystemMessage(now.Add(2*time.Second), "bob has been kicked"))
	req.Len(f.lastView().Messages, 2)

	// When the user removes bob from the roster
	req.NoError(f.session.Handle(ctx, domain.RemoveUserCommand{Index: f.session.Roster().IndexOf("bob")}))

	// Then bob leaves the roster, the selection and the filtered view
	req.Equal([]string{"alice", "carol"}, f.session.Roster().Names())
	req.Equal([]string{"carol"}, f.session.Selection().Names())
	req.Equal([]string{"carol"}, f.lastView().Selected)
	req.Equal([]string{"carol"}, authors(f.lastView().Messages))
}

func TestSession_RemoveUser_OutOfRange_IsIgnored(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	req.NoError(f.session.Handle(context.Background(), domain.RemoveUserCommand{Index: 5}))

	req.Equal([]string{"alice"}, f.session.Roster().Names())
	req.Empty(f.views)
}

func TestSession_ClearRoster_EmptiesSelection(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	ctx := context.Background()
	f.session.Deliver(ctx, domain.NewMessage(time.Now(), "bob", "hi"))
	req.NoError(f.session.Handle(ctx, domain.SelectCommand{Indices: []int{1}}))

	req.NoError(f.session.Handle(ctx, domain.ClearRosterCommand{}))

	req.Zero(f.session.Roster().Size())
	req.True(f.session.Selection().IsEmpty())
	// Messages stay: only the user list is cleared
	req.Equal(1, f.session.Store().Len())
	// Clearing an empty roster is a no-op
	req.NoError(f.session.Handle(ctx, domain.ClearRosterCommand{}))
}
