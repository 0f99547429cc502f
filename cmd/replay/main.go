// Command replay decodes a captured server stream and prints its messages
// sorted, optionally restricted to some authors.
package main

import (
	"chat-client/domain"
	"chat-client/projection"
	"chat-client/render"
	"chat-client/wire"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Replay error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var sortBy, authors string
	cmd := &cobra.Command{
		Use:          "replay FILE",
		Short:        "Print the messages of a captured chat stream",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return replay(f, out, sortBy, authors)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "date", "comma separated sort criteria: date, author, content")
	cmd.Flags().StringVar(&authors, "authors", "", "comma separated authors to keep")
	return cmd
}

func replay(in io.Reader, out io.Writer, sortBy, authors string) error {
	criteria, err := domain.ParseCriteria(sortBy)
	if err != nil {
		return err
	}
	store := projection.NewMessageStore(domain.NewOrdering(criteria...))

	decoder, err := wire.NewDecoder(in)
	if err != nil {
		return err
	}
	for {
		message, err := decoder.Decode()
		if errors.Is(err, io.EOF) || (err == nil && message == nil) {
			break
		}
		if err != nil {
			return err
		}
		store.Append(*message)
	}

	messages := store.Sorted()
	if authors != "" {
		selection := domain.NewSelection()
		selection.SelectNames(lo.Map(strings.Split(authors, ","), func(a string, _ int) string {
			return strings.TrimSpace(a)
		})...)
		messages = store.Filtered(projection.SelectedAuthors(selection))
	}
	render.WriteMessages(out, messages)
	return nil
}
