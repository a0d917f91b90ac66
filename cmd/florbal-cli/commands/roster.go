package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

func newRosterCommand(o *options) *cobra.Command {
	var side string

	cmd := &cobra.Command{
		Use:   "roster <matchID> [--side home|away]",
		Short: "Prints the rosters of a match.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sides []string
			switch side {
			case "":
				sides = []string{"home", "away"}
			case "home", "away":
				sides = []string{side}
			default:
				return fmt.Errorf("--side must be home or away, got %q", side)
			}

			res := o.client().LoadRoster(cmd.Context(), args[0])

			return render(cmd, o, res, func(t table.Writer, roster florbal.MatchRoster) {
				t.AppendHeader(table.Row{"Team", "#", "Name", "Pos", "Born"})
				for _, s := range sides {
					team := roster.Home
					if s == "away" {
						team = roster.Away
					}
					for _, p := range team.Players {
						t.AppendRow(table.Row{team.TeamName, p.Number, p.Name, string(p.Position), p.BirthYear})
					}
					t.AppendSeparator()
				}
			})
		},
	}
	cmd.Flags().StringVar(&side, "side", "", "Only print the home or away roster.")
	return cmd
}
