package domain

// Command is a user action handled by the session.
type Command interface {
	Name() string
}

// ClearCommand empties the message store.
type ClearCommand struct{}

// ClearSelectedCommand removes the messages of the selected authors.
type ClearSelectedCommand struct{}

// KickCommand asks the server to kick every selected user but oneself.
type KickCommand struct{}

// FilterCommand shows only the messages of the selected authors when Enabled.
type FilterCommand struct {
	Enabled bool
}

// SortByCommand makes Criterion the only sort criterion.
type SortByCommand struct {
	Criterion Criterion
}

type AddCriterionCommand struct {
	Criterion Criterion
}

type RemoveCriterionCommand struct {
	Criterion Criterion
}

// SelectCommand replaces the selection with the given roster positions.
type SelectCommand struct {
	Indices []int
}

// SayCommand sends free text to the room.
type SayCommand struct {
	Text string
}

// RemoveUserCommand drops the roster entry at Index, typically once the
// server reported that the user left.
type RemoveUserCommand struct {
	Index int
}

// ClearRosterCommand empties the roster.
type ClearRosterCommand struct{}

// QuitCommand says bye to the server and ends the session.
type QuitCommand struct{}

func (ClearCommand) Name() string           { return "clear" }
func (ClearSelectedCommand) Name() string   { return "clear-selected" }
func (KickCommand) Name() string            { return "kick" }
func (FilterCommand) Name() string          { return "filter" }
func (SortByCommand) Name() string          { return "sort" }
func (AddCriterionCommand) Name() string    { return "add-criterion" }
func (RemoveCriterionCommand) Name() string { return "remove-criterion" }
func (SelectCommand) Name() string          { return "select" }
func (SayCommand) Name() string             { return "say" }
func (RemoveUserCommand) Name() string      { return "remove-user" }
func (ClearRosterCommand) Name() string     { return "clear-users" }
func (QuitCommand) Name() string            { return "quit" }
