package app

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/model"
	"github.com/afuentes/suicoin/internal/registry"
)

func (s *runtimeState) newCoinsCommand() *cobra.Command {
	root := &cobra.Command{Use: "coins", Short: "Coin balances and operations"}
	root.AddCommand(s.newCoinsListCommand())
	root.AddCommand(s.newCoinsByTypeCommand())
	root.AddCommand(s.newCoinsMetadataCommand())
	root.AddCommand(s.newCoinsSplitCommand())
	root.AddCommand(s.newCoinsMergeCommand())
	root.AddCommand(s.newCoinsTransferCommand())
	return root
}

func (s *runtimeState) newCoinsListCommand() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all coins grouped by type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(address) == "" {
				return clierr.New(clierr.CodeUsage, "--address is required")
			}
			ctx, cancel := s.commandContext()
			defer cancel()
			grouped, err := s.aggregator.GetCoinsGrouped(ctx, address)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), grouped, nil)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Owner address")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func (s *runtimeState) newCoinsByTypeCommand() *cobra.Command {
	var address, coinType string
	cmd := &cobra.Command{
		Use:   "by-type",
		Short: "List coins of one type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(address) == "" || strings.TrimSpace(coinType) == "" {
				return clierr.New(clierr.CodeUsage, "--address and --type are required")
			}
			ctx, cancel := s.commandContext()
			defer cancel()
			group, err := s.aggregator.GetCoinsByType(ctx, address, coinType)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), group, nil)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Owner address")
	cmd.Flags().StringVar(&coinType, "type", "", "Coin type tag (package::module::struct)")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (s *runtimeState) newCoinsMetadataCommand() *cobra.Command {
	var coinType string
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Fetch token metadata for a coin type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(coinType) == "" {
				return clierr.New(clierr.CodeUsage, "--type is required")
			}
			ctx, cancel := s.commandContext()
			defer cancel()
			meta, err := s.aggregator.GetCoinMetadata(ctx, coinType)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), meta, nil)
		},
	}
	cmd.Flags().StringVar(&coinType, "type", "", "Coin type tag (package::module::struct)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (s *runtimeState) newCoinsSplitCommand() *cobra.Command {
	var coinID, coinType string
	var amounts []string
	var gasBudget uint64
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a coin into new coins with the given amounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			var result model.OperationResult
			if dryRun {
				result = s.operations.DryRunSplit(ctx, coinID, coinType, amounts, gasBudget)
			} else {
				result = s.operations.Split(ctx, coinID, coinType, amounts, gasBudget)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), result, nil)
		},
	}
	cmd.Flags().StringVar(&coinID, "coin-id", "", "Coin object ID to split")
	cmd.Flags().StringVar(&coinType, "type", registry.NativeCoinType, "Coin type tag")
	cmd.Flags().StringSliceVar(&amounts, "amounts", nil, "Base-unit amounts for the new coins")
	cmd.Flags().Uint64Var(&gasBudget, "gas-budget", 0, "Gas budget in MIST")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate without committing")
	_ = cmd.MarkFlagRequired("coin-id")
	_ = cmd.MarkFlagRequired("amounts")
	return cmd
}

func (s *runtimeState) newCoinsMergeCommand() *cobra.Command {
	var primaryID, coinType string
	var coinIDs []string
	var gasBudget uint64
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge coins into a primary coin",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			var result model.OperationResult
			if dryRun {
				result = s.operations.DryRunMerge(ctx, primaryID, coinIDs, coinType, gasBudget)
			} else {
				result = s.operations.Merge(ctx, primaryID, coinIDs, coinType, gasBudget)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), result, nil)
		},
	}
	cmd.Flags().StringVar(&primaryID, "primary", "", "Coin object ID that absorbs the others")
	cmd.Flags().StringSliceVar(&coinIDs, "coins", nil, "Coin object IDs to merge in")
	cmd.Flags().StringVar(&coinType, "type", registry.NativeCoinType, "Coin type tag")
	cmd.Flags().Uint64Var(&gasBudget, "gas-budget", 0, "Gas budget in MIST")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate without committing")
	_ = cmd.MarkFlagRequired("primary")
	_ = cmd.MarkFlagRequired("coins")
	return cmd
}

func (s *runtimeState) newCoinsTransferCommand() *cobra.Command {
	var coinID, coinType, recipient, amount string
	var gasBudget uint64
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer an exact amount from a coin to a recipient",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			var result model.OperationResult
			if dryRun {
				result = s.operations.DryRunTransfer(ctx, coinID, coinType, recipient, amount, gasBudget)
			} else {
				result = s.operations.Transfer(ctx, coinID, coinType, recipient, amount, gasBudget)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), result, nil)
		},
	}
	cmd.Flags().StringVar(&coinID, "coin-id", "", "Source coin object ID")
	cmd.Flags().StringVar(&coinType, "type", registry.NativeCoinType, "Coin type tag")
	cmd.Flags().StringVar(&recipient, "to", "", "Recipient address")
	cmd.Flags().StringVar(&amount, "amount", "", "Base-unit amount to transfer")
	cmd.Flags().Uint64Var(&gasBudget, "gas-budget", 0, "Gas budget in MIST")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate without committing")
	_ = cmd.MarkFlagRequired("coin-id")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (s *runtimeState) commandContext() (context.Context, context.CancelFunc) {
	timeout := s.settings.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
