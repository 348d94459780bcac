package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofinances/gofinances/internal/cli"
	"github.com/gofinances/gofinances/internal/common"
	"github.com/gofinances/gofinances/internal/storage"
	"github.com/spf13/cobra"
)

func backupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Save and restore copies of the local database",
		Long: `Checkpoints are full copies of the database kept in a "checkpoints"
directory next to it. One is also taken automatically before every import.`,
	}

	cmd.AddCommand(backupCreateCmd(a))
	cmd.AddCommand(backupListCmd(a))
	cmd.AddCommand(backupRestoreCmd(a))
	cmd.AddCommand(backupDeleteCmd(a))
	return cmd
}

// withCheckpoints opens the database and hands a checkpoint manager to fn.
func (a *app) withCheckpoints(cmd *cobra.Command, fn func(*storage.CheckpointManager) error) error {
	kv, err := a.openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()

	cm, err := storage.NewCheckpointManager(kv)
	if err != nil {
		return err
	}
	return fn(cm)
}

func backupCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [tag]",
		Short: "Save a checkpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			var tag string
			if len(args) == 1 {
				tag = args[0]
			}

			return a.withCheckpoints(cmd, func(cm *storage.CheckpointManager) error {
				info, err := cm.Create(cmd.Context(), tag, description)
				if err != nil {
					return checkpointError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Backup criado: "+info.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringP("description", "m", "", "what this checkpoint is for")
	return cmd
}

func backupListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCheckpoints(cmd, func(cm *storage.CheckpointManager) error {
				checkpoints, err := cm.List(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(checkpoints) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("Nenhum backup encontrado"))
					return nil
				}

				var b strings.Builder
				for _, cp := range checkpoints {
					kind := "manual"
					if cp.IsAuto {
						kind = "auto"
					}
					fmt.Fprintf(&b, "%-40s %s  %-6s %3d usuário(s)  %s\n",
						cp.ID, cp.CreatedAt.Format("02/01/2006 15:04"), kind, cp.Users, cp.Description)
				}
				fmt.Fprint(out, b.String())
				return nil
			})
		},
	}
}

func backupRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <tag>",
		Short: "Replace the database with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = kv.Close() }()

			cm, err := storage.NewCheckpointManager(kv)
			if err != nil {
				return err
			}
			if err := cm.Restore(cmd.Context(), args[0]); err != nil {
				return checkpointError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Backup restaurado: "+args[0]))
			return nil
		},
	}
}

func backupDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCheckpoints(cmd, func(cm *storage.CheckpointManager) error {
				if err := cm.Delete(cmd.Context(), args[0]); err != nil {
					return checkpointError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Backup removido: "+args[0]))
				return nil
			})
		},
	}
}

func checkpointError(err error) error {
	switch {
	case errors.Is(err, storage.ErrCheckpointNotFound):
		return common.NewUserError("Backup não encontrado.", err)
	case errors.Is(err, storage.ErrCheckpointExists):
		return common.NewUserError("Já existe um backup com esse nome.", err)
	case errors.Is(err, storage.ErrInvalidCheckpointID):
		return common.NewUserError("Nome de backup inválido.", err)
	case errors.Is(err, storage.ErrCheckpointCorrupted):
		return common.NewUserError("O backup está corrompido.", err)
	}
	return err
}
