package main

import (
	"context"
	"fmt"

	"github.com/gofinances/gofinances/internal/cli"
	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/report"
	"github.com/gofinances/gofinances/internal/transactions"
	"github.com/gofinances/gofinances/internal/tui"
	"github.com/spf13/cobra"
)

func summaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show where the money went in a month",
		Long: `Break a month's expenses down by category.

With --interactive, browse months with ←/→ (or h/l) and quit with q.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			monthFlag, _ := cmd.Flags().GetString("month")
			interactive, _ := cmd.Flags().GetBool("interactive")

			month := report.MonthOf(a.now())
			if monthFlag != "" {
				parsed, err := report.ParseMonth(monthFlag)
				if err != nil {
					return common.NewUserError("Mês inválido, use o formato AAAA-MM.", err)
				}
				month = parsed
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			e, err := a.openEnv(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			_, sc, err := e.requireUser()
			if err != nil {
				return err
			}

			load := summaryLoader(e.transactions, sc.UserID)
			if interactive {
				return tui.RunSummary(ctx, load, month,
					tui.WithInput(cmd.InOrStdin()),
					tui.WithOutput(out),
					tui.WithClock(a.now))
			}

			summaries, err := load(ctx, month)
			if err != nil {
				notice := cli.StorageNotice(err)
				if notice == "" {
					return err
				}
				fmt.Fprintln(out, notice)
			}
			fmt.Fprint(out, cli.RenderCategorySummary(month, summaries))
			return nil
		},
	}

	cmd.Flags().String("month", "", "month to summarize as YYYY-MM (default: current month)")
	cmd.Flags().BoolP("interactive", "i", false, "browse months interactively")
	return cmd
}

// summaryLoader reloads the user's snapshot for every month requested.
func summaryLoader(store *transactions.Store, userID string) tui.Loader {
	return func(ctx context.Context, month report.Month) ([]report.CategorySummary, error) {
		records, err := store.Load(ctx, userID)
		if err != nil {
			return nil, err
		}
		return report.ComputeCategoryBreakdown(records, month)
	}
}
