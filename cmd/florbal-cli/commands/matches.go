package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
	"github.com/fortuna/florbal-stats/internal/service"
)

func newMatchesCommand(o *options) *cobra.Command {
	var schedule bool

	cmd := &cobra.Command{
		Use:   "matches <teamID> [--schedule]",
		Short: "Lists a team's matches.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := o.client().LoadTeamMatches(cmd.Context(), args[0])

			now := time.Now()
			if res.OK && schedule {
				res.Data = service.SortMatchList(res.Data, now)
			}

			return render(cmd, o, res, func(t table.Writer, items []florbal.MatchListItem) {
				t.AppendHeader(table.Row{"Match ID", "Date", "Home", "Away", ""})
				for _, item := range items {
					status := ""
					if service.IsPast(item, now) {
						status = "played"
					}
					t.AppendRow(table.Row{item.MatchID, item.Date, item.HomeTeam, item.AwayTeam, status})
				}
			})
		},
	}
	cmd.Flags().BoolVar(&schedule, "schedule", false, "Order upcoming matches first, soonest at the top.")
	return cmd
}
