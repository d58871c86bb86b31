package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/journal"
	"github.com/afuentes/suicoin/internal/model"
	"github.com/afuentes/suicoin/internal/parse"
	"github.com/afuentes/suicoin/internal/ptb"
	"github.com/afuentes/suicoin/internal/suiexec"
)

// Service orchestrates coin operations over the external binary: select the
// transaction path, build the argument vector, execute, parse. Every
// downstream failure is folded into OperationResult; callers never see raw
// process or parse errors.
type Service struct {
	exec      suiexec.Runner
	journal   *journal.Store
	network   string
	gasBudget uint64
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(exec suiexec.Runner, jour *journal.Store, network string, gasBudget uint64, log zerolog.Logger) *Service {
	if gasBudget == 0 {
		gasBudget = ptb.DefaultGasBudget
	}
	return &Service{
		exec:      exec,
		journal:   jour,
		network:   network,
		gasBudget: gasBudget,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Split(ctx context.Context, coinID, coinType string, amounts []string, gasBudget uint64) model.OperationResult {
	return s.split(ctx, coinID, coinType, amounts, gasBudget, false)
}

func (s *Service) DryRunSplit(ctx context.Context, coinID, coinType string, amounts []string, gasBudget uint64) model.OperationResult {
	return s.split(ctx, coinID, coinType, amounts, gasBudget, true)
}

func (s *Service) split(ctx context.Context, coinID, coinType string, amounts []string, gasBudget uint64, dryRun bool) model.OperationResult {
	if coinID == "" || len(amounts) == 0 {
		return failure(clierr.New(clierr.CodeUsage, "split needs a coin id and at least one amount"))
	}
	path := ptb.SelectPath(ptb.OpSplit, coinType)

	var args []string
	if path == ptb.PathNative {
		args = ptb.NativeSplitArgs(coinID, amounts, s.budget(gasBudget))
		if dryRun {
			args = append(args, "--dry-run")
		}
	} else {
		// A plain split keeps the pieces: transfer them back to the sender.
		sender, err := s.ActiveAddress(ctx)
		if err != nil {
			return failure(err)
		}
		builder := ptb.NewBuilder().
			SplitCoins(coinID, amounts).
			Assign("new_coins").
			TransferObjects(ptb.ResultRefs("new_coins", len(amounts)), sender).
			GasBudget(s.budget(gasBudget))
		if dryRun {
			builder.DryRun()
		}
		args = builder.Args()
	}

	result := s.execute(ctx, args, path, dryRun)
	s.record(ptb.OpSplit, coinType, dryRun, result)
	return result
}

func (s *Service) Merge(ctx context.Context, primaryID string, coinIDs []string, coinType string, gasBudget uint64) model.OperationResult {
	return s.merge(ctx, primaryID, coinIDs, coinType, gasBudget, false)
}

func (s *Service) DryRunMerge(ctx context.Context, primaryID string, coinIDs []string, coinType string, gasBudget uint64) model.OperationResult {
	return s.merge(ctx, primaryID, coinIDs, coinType, gasBudget, true)
}

func (s *Service) merge(ctx context.Context, primaryID string, coinIDs []string, coinType string, gasBudget uint64, dryRun bool) model.OperationResult {
	if primaryID == "" || len(coinIDs) == 0 {
		return failure(clierr.New(clierr.CodeUsage, "merge needs a primary coin and at least one coin to merge"))
	}
	// Merge always takes the generic path; see ptb.SelectPath.
	path := ptb.SelectPath(ptb.OpMerge, coinType)
	builder := ptb.NewBuilder().
		MergeCoins(primaryID, coinIDs).
		GasBudget(s.budget(gasBudget))
	if dryRun {
		builder.DryRun()
	}

	result := s.execute(ctx, builder.Args(), path, dryRun)
	s.record(ptb.OpMerge, coinType, dryRun, result)
	return result
}

func (s *Service) Transfer(ctx context.Context, coinID, coinType, recipient, amount string, gasBudget uint64) model.OperationResult {
	return s.transfer(ctx, coinID, coinType, recipient, amount, gasBudget, false)
}

func (s *Service) DryRunTransfer(ctx context.Context, coinID, coinType, recipient, amount string, gasBudget uint64) model.OperationResult {
	return s.transfer(ctx, coinID, coinType, recipient, amount, gasBudget, true)
}

func (s *Service) transfer(ctx context.Context, coinID, coinType, recipient, amount string, gasBudget uint64, dryRun bool) model.OperationResult {
	if coinID == "" || recipient == "" || amount == "" {
		return failure(clierr.New(clierr.CodeUsage, "transfer needs a coin id, a recipient and an amount"))
	}
	path := ptb.SelectPath(ptb.OpTransfer, coinType)

	var args []string
	if path == ptb.PathNative {
		args = ptb.NativeTransferArgs(coinID, recipient, amount, s.budget(gasBudget))
		if dryRun {
			args = append(args, "--dry-run")
		}
	} else {
		// Split the exact amount off the source coin, then hand that single
		// piece to the recipient.
		builder := ptb.NewBuilder().
			SplitCoins(coinID, []string{amount}).
			Assign("transfer_coin").
			TransferObjects(ptb.ResultRefs("transfer_coin", 1), recipient).
			GasBudget(s.budget(gasBudget))
		if dryRun {
			builder.DryRun()
		}
		args = builder.Args()
	}

	result := s.execute(ctx, args, path, dryRun)
	s.record(ptb.OpTransfer, coinType, dryRun, result)
	return result
}

// ActiveAddress resolves the configured sender via the binary.
func (s *Service) ActiveAddress(ctx context.Context) (string, error) {
	out, err := s.exec.Run(ctx, []string{"client", "active-address"}, suiexec.Options{})
	if err != nil {
		return "", err
	}
	return out, nil
}

// Environments lists the binary's configured RPC environments, sanitized.
func (s *Service) Environments(ctx context.Context) (string, error) {
	out, err := s.exec.Run(ctx, []string{"client", "envs"}, suiexec.Options{})
	if err != nil {
		return "", err
	}
	return parse.SanitizeOutput(out), nil
}

// execute runs the built command and picks the parser: the generic-path dry
// run emits free text (the tool cannot combine it with JSON output), every
// other combination returns structured JSON.
func (s *Service) execute(ctx context.Context, args []string, path ptb.Path, dryRun bool) model.OperationResult {
	textMode := path == ptb.PathGeneric && dryRun
	out, err := s.exec.Run(ctx, args, suiexec.Options{JSONOutput: !textMode})
	if err != nil {
		return failure(err)
	}

	var result model.OperationResult
	if textMode {
		result, err = parse.ParseDryRunText(out)
	} else {
		result, err = parse.ParseStructured(out)
	}
	if err != nil {
		return failure(err)
	}
	return result
}

func (s *Service) record(op ptb.Operation, coinType string, dryRun bool, result model.OperationResult) {
	if dryRun || s.journal == nil {
		return
	}
	rec := journal.Record{
		RecordID:  newRecordID(),
		Operation: op.String(),
		CoinType:  coinType,
		Network:   s.network,
		Digest:    result.Digest,
		GasUsed:   result.GasUsed,
		Success:   result.Success,
		Error:     result.Error,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.journal.Append(rec); err != nil {
		s.log.Debug().Err(err).Msg("journal write failed")
	}
}

func (s *Service) budget(requested uint64) uint64 {
	if requested > 0 {
		return requested
	}
	return s.gasBudget
}

func failure(err error) model.OperationResult {
	msg := err.Error()
	if cErr, ok := clierr.As(err); ok {
		msg = cErr.Message
	}
	return model.OperationResult{Success: false, Error: parse.SanitizeError(msg)}
}

func newRecordID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
