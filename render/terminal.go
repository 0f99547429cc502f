// Package render draws the session on a terminal.
// It only reads views handed to it and never modifies session state.
package render

import (
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/projection"
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// TerminalRenderer redraws the whole message list on every Render call.
type TerminalRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
}

func NewTerminalRenderer(out io.Writer, colours bool) *TerminalRenderer {
	return &TerminalRenderer{out: out, colours: colours}
}

func (r *TerminalRenderer) Render(ctx context.Context, view projection.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(r.header(view))
	sb.WriteByte('\n')
	for _, m := range view.Messages {
		sb.WriteString(r.line(m))
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(r.out, sb.String()); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrRender, err)
	}
	return nil
}

// RosterChanged prints the participants on one line.
func (r *TerminalRenderer) RosterChanged(change domain.RosterChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := "users: " + strings.Join(change.Names, ", ")
	if r.colours {
		line = color.New(color.FgCyan).Render(line)
	}
	_, _ = fmt.Fprintln(r.out, line)
}

func (r *TerminalRenderer) header(view projection.View) string {
	header := fmt.Sprintf("  ====== %d messages, sorted by %s ======",
		len(view.Messages), domain.FormatCriteria(view.Criteria))
	if view.Filtered {
		header += " filter: " + strings.Join(view.Selected, ", ")
	}
	if r.colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	return header
}

func (r *TerminalRenderer) line(m domain.Message) string {
	if !r.colours || !m.HasAuthor() {
		return m.String()
	}
	red, green, blue := AuthorColour(m.Author())
	return color.RGB(red, green, blue).Sprint(m.String())
}

// AuthorColour derives a stable colour from the author name, darkened to
// stay readable on light backgrounds.
func AuthorColour(author string) (uint8, uint8, uint8) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(author))
	sum := h.Sum32()
	darker := func(c uint32) uint8 { return uint8(float64(c&0xff) * 0.7) }
	return darker(sum >> 16), darker(sum >> 8), darker(sum)
}

// WriteRoster prints the roster with positions, as used by selection commands.
func WriteRoster(w io.Writer, names []string, selection *domain.Selection) {
	table := newTable(w)
	table.SetHeader([]string{"#", "Name", "Selected"})
	for i, name := range names {
		selected := ""
		if selection != nil && selection.Contains(name) {
			selected = "*"
		}
		table.Append([]string{strconv.Itoa(i), name, selected})
	}
	table.Render()
}

// WriteMessages prints messages as a table.
func WriteMessages(w io.Writer, messages []domain.Message) {
	table := newTable(w)
	table.SetHeader([]string{"Date", "Author", "Content"})
	for _, m := range messages {
		table.Append([]string{m.At().Format("2006/01/02 15:04:05"), m.Author(), m.Content()})
	}
	table.Render()
}

// WriteEntries prints key/value pairs as a table.
func WriteEntries(w io.Writer, entries [][2]string) {
	table := newTable(w)
	table.SetHeader([]string{"Key", "Value"})
	for _, e := range entries {
		table.Append(e[:])
	}
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
