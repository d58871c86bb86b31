package ops

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/journal"
	"github.com/afuentes/suicoin/internal/suiexec"
)

const nativeType = "0x2::sui::SUI"

type call struct {
	args []string
	opts suiexec.Options
}

// fakeRunner replays canned outputs and records every invocation.
type fakeRunner struct {
	calls   []call
	outputs map[string]string
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, args []string, opts suiexec.Options) (string, error) {
	f.calls = append(f.calls, call{args: append([]string(nil), args...), opts: opts})
	if f.err != nil {
		return "", f.err
	}
	key := strings.Join(args[:2], " ")
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return "", clierr.New(clierr.CodeProcess, "unexpected command "+key)
}

const successJSON = `{"digest":"TestDigest","effects":{"status":{"status":"success"},"gasUsed":{"computationCost":"100","storageCost":"50","storageRebate":"20"},"created":[{"reference":{"objectId":"0xfresh"}}]}}`

func TestSplitNativeUsesDedicatedSubcommand(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"client split-coin": successJSON}}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.Split(context.Background(), "0xcoin", nativeType, []string{"100", "200"}, 0)
	if !result.Success || result.Digest != "TestDigest" || result.GasUsed != "130" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(runner.calls))
	}
	c := runner.calls[0]
	if c.args[1] != "split-coin" || !c.opts.JSONOutput {
		t.Fatalf("unexpected invocation: %+v", c)
	}
}

func TestSplitGenericResolvesSenderAndBuildsPTB(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"client active-address": "0xsender",
		"client ptb":            successJSON,
	}}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.Split(context.Background(), "0xcoin", "0xabc::usdx::USDX", []string{"10", "20", "30"}, 0)
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected sender lookup + ptb, got %d calls", len(runner.calls))
	}
	ptbCall := runner.calls[1]
	joined := strings.Join(ptbCall.args, " ")
	if !strings.Contains(joined, "--split-coins @0xcoin [10, 20, 30]") {
		t.Fatalf("split step missing: %q", joined)
	}
	if !strings.Contains(joined, "--transfer-objects [new_coins.0, new_coins.1, new_coins.2] @0xsender") {
		t.Fatalf("transfer-back step missing: %q", joined)
	}
	if !ptbCall.opts.JSONOutput {
		t.Fatal("committed generic operation should request JSON output")
	}
}

func TestDryRunGenericSkipsJSONAndParsesText(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"client active-address": "0xsender",
		"client ptb":            "Dry run completed, execution status: success\nEstimated gas cost: 555 MIST",
	}}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.DryRunSplit(context.Background(), "0xcoin", "0xabc::usdx::USDX", []string{"10"}, 0)
	if !result.Success || result.GasUsed != "555" {
		t.Fatalf("unexpected result: %+v", result)
	}
	ptbCall := runner.calls[1]
	if ptbCall.opts.JSONOutput {
		t.Fatal("generic dry run must not request JSON output")
	}
	if ptbCall.args[len(ptbCall.args)-1] != "--dry-run" {
		t.Fatalf("expected --dry-run, got %v", ptbCall.args)
	}
}

func TestDryRunFailureTextRewritten(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"client ptb": "Dry run completed, execution status: failure due to InsufficientCoinBalance in command 0",
	}}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.DryRunMerge(context.Background(), "0xp", []string{"0xc1"}, nativeType, 0)
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "Insufficient balance for this split" {
		t.Fatalf("error = %q", result.Error)
	}
}

func TestMergeAlwaysGeneric(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"client ptb": successJSON}}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.Merge(context.Background(), "0xp", []string{"0xc1", "0xc2"}, nativeType, 0)
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
	c := runner.calls[0]
	if c.args[1] != "ptb" {
		t.Fatalf("merge should build a transaction block, got %v", c.args)
	}
	if !strings.Contains(strings.Join(c.args, " "), "--merge-coins @0xp [@0xc1, @0xc2]") {
		t.Fatalf("merge step missing: %v", c.args)
	}
}

func TestTransferNativeUsesPayForm(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"client pay-sui": successJSON}}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.Transfer(context.Background(), "0xcoin", nativeType, "0xdest", "999", 0)
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
	joined := strings.Join(runner.calls[0].args, " ")
	if !strings.Contains(joined, "--recipients 0xdest") || !strings.Contains(joined, "--amounts 999") {
		t.Fatalf("unexpected pay args: %q", joined)
	}
}

func TestTransferGenericSplitsExactAmount(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"client ptb": successJSON}}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.Transfer(context.Background(), "0xcoin", "0xabc::usdx::USDX", "0xdest", "42", 0)
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
	joined := strings.Join(runner.calls[0].args, " ")
	if !strings.Contains(joined, "--split-coins @0xcoin [42]") {
		t.Fatalf("split step missing: %q", joined)
	}
	if !strings.Contains(joined, "--transfer-objects [transfer_coin.0] @0xdest") {
		t.Fatalf("transfer step missing: %q", joined)
	}
}

func TestProcessFailureBecomesResult(t *testing.T) {
	runner := &fakeRunner{err: clierr.New(clierr.CodeProcess, "Error: gas object not found at /home/u/.sui/config")}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.Split(context.Background(), "0xcoin", nativeType, []string{"1"}, 0)
	if result.Success {
		t.Fatal("expected failure result")
	}
	if strings.Contains(result.Error, "/home/") || strings.HasPrefix(result.Error, "Error:") {
		t.Fatalf("error not sanitized: %q", result.Error)
	}
}

func TestUsageErrorsDoNotInvokeBinary(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewService(runner, nil, "testnet", 0, zerolog.Nop())

	result := svc.Split(context.Background(), "", nativeType, nil, 0)
	if result.Success || len(runner.calls) != 0 {
		t.Fatalf("expected local failure, got %+v after %d calls", result, len(runner.calls))
	}
}

func TestExecutedOperationsAreJournaled(t *testing.T) {
	tmp := t.TempDir()
	store, err := journal.Open(filepath.Join(tmp, "ops.db"), filepath.Join(tmp, "ops.lock"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	runner := &fakeRunner{outputs: map[string]string{"client split-coin": successJSON}}
	svc := NewService(runner, store, "testnet", 0, zerolog.Nop())

	svc.Split(context.Background(), "0xcoin", nativeType, []string{"1"}, 0)
	svc.DryRunSplit(context.Background(), "0xcoin", nativeType, []string{"1"}, 0)

	records, err := store.List("", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("dry runs must not be journaled; got %d records", len(records))
	}
	if records[0].Operation != "split" || records[0].Digest != "TestDigest" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}
