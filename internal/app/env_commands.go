package app

import (
	"github.com/spf13/cobra"
)

func (s *runtimeState) newEnvCommand() *cobra.Command {
	root := &cobra.Command{Use: "env", Short: "Wallet environment inspection"}

	activeCmd := &cobra.Command{
		Use:   "active-address",
		Short: "Print the wallet's active address",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			address, err := s.operations.ActiveAddress(ctx)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), map[string]string{"address": address}, nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured wallet environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			envs, err := s.operations.Environments(ctx)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), map[string]string{"environments": envs}, nil)
		},
	}

	root.AddCommand(activeCmd)
	root.AddCommand(listCmd)
	return root
}
