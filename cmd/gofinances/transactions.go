package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gofinances/gofinances/internal/catalog"
	"github.com/gofinances/gofinances/internal/cli"
	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/gofinances/gofinances/internal/report"
	"github.com/gofinances/gofinances/internal/storage"
	"github.com/spf13/cobra"
)

func addCmd(a *app) *cobra.Command {
	var draft model.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an income or an expense",
		Long: `Register a transaction for the signed-in user.

Fields not given as flags are asked for interactively.

Examples:
  gofinances add --title "Aluguel" --amount 1200 --type outcome --category housing
  gofinances add --title "Salário" --amount 5000,00 --type income --category salary --date 2020-04-05`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			form := cli.NewFormReader(a.in, out)
			if err := form.FillDraft(ctx, &draft); err != nil {
				return fmt.Errorf("failed to read transaction: %w", err)
			}

			record, err := draft.Build(a.now())
			var draftErr *model.DraftError
			if errors.As(err, &draftErr) {
				fmt.Fprintln(out, renderDraftErrors(draftErr))
				return common.NewUserError("Transação não cadastrada.", err)
			}
			if err != nil {
				return err
			}

			if err := e.transactions.Append(ctx, sc.UserID, record); err != nil {
				if errors.Is(err, storage.ErrStorageUnavailable) {
					fmt.Fprintln(out, cli.StorageNotice(err))
					return common.NewUserError("Não foi possível salvar.", err)
				}
				return err
			}

			rows, err := report.FormatForDisplay([]model.Transaction{record})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess("Transação cadastrada"))
			fmt.Fprintln(out, cli.RenderRow(rows[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "transaction name")
	cmd.Flags().StringVar(&draft.Amount, "amount", "", "amount, e.g. 59 or 1.200,50")
	cmd.Flags().StringVar(&draft.Type, "type", "", "income or outcome")
	cmd.Flags().StringVar(&draft.CategoryKey, "category", "", "category key (see \"gofinances categories\")")
	cmd.Flags().StringVar(&draft.Date, "date", "", "date as YYYY-MM-DD (default: today)")
	return cmd
}

func renderDraftErrors(err *model.DraftError) string {
	fields := make([]string, 0, len(err.Fields))
	for field := range err.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msg string
	for _, field := range fields {
		msg += cli.FormatError(err.Fields[field]) + "\n"
	}
	return msg
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the signed-in user's transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			records, err := e.loadRecords(ctx, out, sc)
			if err != nil {
				return err
			}

			rows, err := report.FormatForDisplay(records)
			if err != nil {
				return err
			}
			fmt.Fprint(out, cli.RenderTransactionList(rows))
			return nil
		},
	}
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the balance cards and the transaction list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			e, err := a.openEnv(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			user, sc, err := e.requireUser()
			if err != nil {
				return err
			}

			records, err := e.loadRecords(ctx, out, sc)
			if err != nil {
				return err
			}

			highlights, err := report.ComputeHighlights(records)
			if err != nil {
				return err
			}
			rows, err := report.FormatForDisplay(records)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.RenderGreeting(user))
			fmt.Fprintln(out, cli.RenderHighlights(highlights))
			fmt.Fprint(out, cli.RenderTransactionList(rows))
			return nil
		},
	}
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the transaction categories",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderCategories(catalog.All()))
		},
	}
}
