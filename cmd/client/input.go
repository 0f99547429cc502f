package main

import (
	"bufio"
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/render"
	"chat-client/runtime"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const graceMargin = 500 * time.Millisecond

const usage = `commands:
  /clear                 remove every message
  /clear-selected        remove the messages of the selected users
  /select 0 2 ...        select users by position (see /who)
  /filter on|off         show only the selected users' messages
  /sort date|author|content
  /order +author|-date   add or remove a sort criterion
  /kick                  kick the selected users
  /remove N              drop the user at position N (after the server reports a departure)
  /clear-users           empty the user list
  /who                   list users with their positions
  /quit                  say bye and leave
anything else is sent to the room`

// whoCommand is handled locally and never reaches the session.
type whoCommand struct{}

func (whoCommand) Name() string { return "who" }

type helpCommand struct{}

func (helpCommand) Name() string { return "help" }

// ParseLine turns one line typed by the user into a command.
func ParseLine(line string) (domain.Command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return domain.SayCommand{Text: line}, nil
	}
	fields := strings.Fields(line)
	verb, args := fields[0], fields[1:]

	switch verb {
	case "/clear":
		return domain.ClearCommand{}, nil
	case "/clear-selected":
		return domain.ClearSelectedCommand{}, nil
	case "/kick":
		return domain.KickCommand{}, nil
	case "/quit":
		return domain.QuitCommand{}, nil
	case "/who":
		return whoCommand{}, nil
	case "/help":
		return helpCommand{}, nil
	case "/filter":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return nil, fmt.Errorf("%w: /filter on|off", errors.ErrUnknownCommand)
		}
		return domain.FilterCommand{Enabled: args[0] == "on"}, nil
	case "/sort":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: /sort date|author|content", errors.ErrUnknownCommand)
		}
		c, err := domain.ParseCriterion(args[0])
		if err != nil {
			return nil, err
		}
		return domain.SortByCommand{Criterion: c}, nil
	case "/order":
		if len(args) != 1 || len(args[0]) < 2 || (args[0][0] != '+' && args[0][0] != '-') {
			return nil, fmt.Errorf("%w: /order +criterion|-criterion", errors.ErrUnknownCommand)
		}
		c, err := domain.ParseCriterion(args[0][1:])
		if err != nil {
			return nil, err
		}
		if args[0][0] == '+' {
			return domain.AddCriterionCommand{Criterion: c}, nil
		}
		return domain.RemoveCriterionCommand{Criterion: c}, nil
	case "/remove":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: /remove N", errors.ErrUnknownCommand)
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: position %q", errors.ErrUnknownCommand, args[0])
		}
		return domain.RemoveUserCommand{Index: i}, nil
	case "/clear-users":
		return domain.ClearRosterCommand{}, nil
	case "/select":
		indices := make([]int, 0, len(args))
		for _, a := range args {
			i, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("%w: position %q", errors.ErrUnknownCommand, a)
			}
			indices = append(indices, i)
		}
		return domain.SelectCommand{Indices: indices}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownCommand, verb)
	}
}

// readInput feeds typed lines to the session until in is exhausted or the
// session stops.
func readInput(ctx context.Context, log *slog.Logger, in io.Reader, out io.Writer, session *runtime.Session) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !session.RunState().IsRunning() {
			return
		}
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		cmd, err := ParseLine(scanner.Text())
		if err != nil {
			_, _ = fmt.Fprintln(out, err)
			continue
		}
		switch cmd.(type) {
		case whoCommand:
			render.WriteRoster(out, session.Roster().Names(), session.Selection())
			continue
		case helpCommand:
			_, _ = fmt.Fprintln(out, usage)
			continue
		}
		if err := session.Handle(ctx, cmd); err != nil {
			log.Warn("Command failed", "command", cmd.Name(), "error", err)
		}
		if _, quit := cmd.(domain.QuitCommand); quit {
			return
		}
	}
}
