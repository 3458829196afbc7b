package cli

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"tracktray/internal/history"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent commits recorded by this client",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := historyPath
		if path == "" {
			defaultPath, err := history.DefaultPath()
			if err != nil {
				return err
			}
			path = defaultPath
		}
		store, err := history.Open(path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer func() { _ = store.Close() }()

		records, err := store.Recent(logLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no commits recorded yet")
			return nil
		}

		table := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeaderAlignment(tw.AlignLeft),
			tablewriter.WithRowAlignment(tw.AlignLeft),
			tablewriter.WithRendition(tw.Rendition{
				Borders: tw.BorderNone,
				Settings: tw.Settings{
					Lines:      tw.LinesNone,
					Separators: tw.SeparatorsNone,
				},
			}),
			tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
		)
		table.Header([]string{"When", "Project", "Task", "Hours", "Notes"})
		for _, r := range records {
			_ = table.Append([]string{
				r.CommittedAt.Local().Format("2006-01-02 15:04"),
				r.ProjectName,
				r.TaskName,
				fmt.Sprintf("%0.02f", r.Hours),
				r.Notes,
			})
		}
		return table.Render()
	},
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "maximum rows to show")
	rootCmd.AddCommand(logCmd)
}
