package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

func newSearchCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Searches the team directory by name.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := o.client().SearchTeams(cmd.Context(), strings.Join(args, " "))

			return render(cmd, o, res, func(t table.Writer, teams []florbal.TeamSearchResult) {
				t.AppendHeader(table.Row{"Team ID", "Team", "Competition", "City"})
				for _, team := range teams {
					t.AppendRow(table.Row{team.TeamID, team.TeamName, team.Competition, team.City})
				}
			})
		},
	}
}
