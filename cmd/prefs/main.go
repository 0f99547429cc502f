// Command prefs prints the preferences stored by the chat client.
package main

import (
	"chat-client/render"
	"chat-client/repositories"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Prefs error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var dbPath, prefix string
	cmd := &cobra.Command{
		Use:          "prefs",
		Short:        "List the stored client preferences",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := repositories.OpenBadger(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			return list(repositories.NewPreferenceRepository(db, slog.Default()), out, prefix)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the preference database (PREFERENCES_PATH of the client)")
	cmd.Flags().StringVar(&prefix, "prefix", "pref:", "key prefix to scan")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func list(repository repositories.PreferenceRepository, out io.Writer, prefix string) error {
	entries, err := repository.Entries(prefix)
	if err != nil {
		return err
	}
	rows := make([][2]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, [2]string{e.Key, e.Value})
	}
	render.WriteEntries(out, rows)
	return nil
}
