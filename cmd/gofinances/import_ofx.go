package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofinances/gofinances/internal/cli"
	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/ofx"
	"github.com/gofinances/gofinances/internal/storage"
	"github.com/spf13/cobra"
)

func importOFXCmd(a *app) *cobra.Command {
	opts := ofx.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX statements exported from your bank.

Credits are filed under --income-category and debits under --expense-category.
Importing the same statement twice does not duplicate transactions.

Examples:
  # Import a single statement
  gofinances import-ofx ~/Downloads/extrato_abril.ofx

  # Import every statement in a directory
  gofinances import-ofx ~/Downloads/*.ofx

  # Preview without saving
  gofinances import-ofx --dry-run ~/Downloads/extrato_abril.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return a.runImportOFX(cmd, args, opts, dryRun)
		},
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().StringVar(&opts.IncomeCategory, "income-category", opts.IncomeCategory, "category for credits")
	cmd.Flags().StringVar(&opts.ExpenseCategory, "expense-category", opts.ExpenseCategory, "category for debits")
	return cmd
}

func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func (a *app) runImportOFX(cmd *cobra.Command, args []string, opts ofx.Options, dryRun bool) error {
	if err := opts.Validate(); err != nil {
		return common.NewUserError("Categoria inválida, veja \"gofinances categories\".", err)
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError("Nenhum arquivo encontrado para importar.", nil)
	}

	out := cmd.OutOrStdout()
	e, err := a.openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	var userID string
	if !dryRun {
		_, sc, err := e.requireUser()
		if err != nil {
			return err
		}
		userID = sc.UserID

		if cm, err := storage.NewCheckpointManager(e.kv); err != nil {
			slog.Warn("Checkpoints unavailable", "error", err)
		} else if _, err := cm.AutoCheckpoint(cmd.Context(), "import"); err != nil {
			slog.Warn("Failed to checkpoint before import", "error", err)
		}
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	progress := cli.NewImportProgress(out, len(files))
	handler := cli.NewInterruptHandler(out)
	ctx, stop := handler.HandleInterrupts(cmd.Context(), progress.Summary)
	defer stop()

	parser := ofx.NewParser(opts)
	found, skipped, failed := 0, 0, 0

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		result, err := parser.ParseFile(ctx, path)
		if err != nil {
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": filepath.Base(path)})
			failed++
			progress.FileDone(0)
			continue
		}
		found += len(result.Transactions)
		skipped += result.Skipped

		if dryRun {
			progress.FileDone(0)
			continue
		}

		added, err := e.transactions.AppendBatch(ctx, userID, result.Transactions)
		if err != nil {
			if errors.Is(err, storage.ErrStorageUnavailable) {
				fmt.Fprintln(out, cli.StorageNotice(err))
				return common.NewUserError("Importação interrompida.", err)
			}
			return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
		}
		common.LogInfo("Processed file", common.Fields{
			"file":               filepath.Base(path),
			"transactions_found": len(result.Transactions),
			"added":              added,
			"duplicates":         len(result.Transactions) - added,
		})
		progress.FileDone(added)
	}

	if handler.WasInterrupted() {
		return nil
	}
	progress.Finish()

	lines := fmt.Sprintf("Arquivos: %d (com erro: %d)\nTransações encontradas: %d\nIgnoradas (valor zero): %d",
		len(files), failed, found, skipped)
	if dryRun {
		lines += "\n" + "Simulação: nada foi salvo."
	} else {
		lines += fmt.Sprintf("\nTransações novas: %d", progress.Saved())
	}
	fmt.Fprintln(out, cli.RenderBox("Importação", lines))
	return nil
}
