package app

import (
	"github.com/spf13/cobra"

	clierr "github.com/afuentes/suicoin/internal/errors"
)

func (s *runtimeState) newOpsCommand() *cobra.Command {
	root := &cobra.Command{Use: "ops", Short: "Executed operation history"}

	var operation string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded split/merge/transfer operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.journal == nil {
				return clierr.New(clierr.CodeUsage, "operation journal is disabled")
			}
			records, err := s.journal.List(operation, limit)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), records, nil)
		},
	}
	listCmd.Flags().StringVar(&operation, "operation", "", "Filter by operation (split|merge|transfer)")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to return")

	root.AddCommand(listCmd)
	return root
}
