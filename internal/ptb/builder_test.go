package ptb

import (
	"reflect"
	"strings"
	"testing"
)

func TestSelectPathDeterminism(t *testing.T) {
	native := "0x2::sui::SUI"
	other := "0xabc::usdx::USDX"

	for _, op := range []Operation{OpSplit, OpTransfer} {
		if SelectPath(op, native) != PathNative {
			t.Errorf("%s on native coin should use the native path", op)
		}
		if SelectPath(op, other) != PathGeneric {
			t.Errorf("%s on %s should use the generic path", op, other)
		}
	}
	if SelectPath(OpMerge, native) != PathGeneric {
		t.Error("merge must always use the generic path, even for the gas coin")
	}
	if SelectPath(OpMerge, other) != PathGeneric {
		t.Error("merge on non-native coin should use the generic path")
	}
}

func TestBuilderSplitThenTransfer(t *testing.T) {
	args := NewBuilder().
		SplitCoins("0xc0ffee", []string{"100", "200"}).
		Assign("new_coins").
		TransferObjects(ResultRefs("new_coins", 2), "0xrecipient").
		GasBudget(1_000_000).
		Args()

	want := []string{
		"client", "ptb",
		"--split-coins", "@0xc0ffee", "[100, 200]",
		"--assign", "new_coins",
		"--transfer-objects", "[new_coins.0, new_coins.1]", "@0xrecipient",
		"--gas-budget", "1000000",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v\nwant %v", args, want)
	}
}

func TestBuilderMerge(t *testing.T) {
	args := NewBuilder().
		MergeCoins("0xp", []string{"0xc1", "0xc2", "0xc3"}).
		Args()

	want := []string{
		"client", "ptb",
		"--merge-coins", "@0xp", "[@0xc1, @0xc2, @0xc3]",
		"--gas-budget", "50000000",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v\nwant %v", args, want)
	}
}

func TestBuilderDryRunFlagLast(t *testing.T) {
	args := NewBuilder().
		SplitCoins("0xc", []string{"5"}).
		Assign("part").
		TransferObjects(ResultRefs("part", 1), "0xme").
		DryRun().
		Args()

	if args[len(args)-1] != "--dry-run" {
		t.Fatalf("expected trailing --dry-run, got %v", args)
	}
	if strings.Contains(strings.Join(args, " "), "--json") {
		t.Fatal("transaction-block args must never carry --json")
	}
}

func TestResultRefsArity(t *testing.T) {
	refs := ResultRefs("new_coins", 3)
	want := []string{"new_coins.0", "new_coins.1", "new_coins.2"}
	if !reflect.DeepEqual(refs, want) {
		t.Fatalf("refs = %v", refs)
	}
	if len(ResultRefs("x", 0)) != 0 {
		t.Fatal("zero refs expected")
	}
}

func TestNativeSplitArgs(t *testing.T) {
	args := NativeSplitArgs("0xcoin", []string{"10", "20"}, 0)
	want := []string{"client", "split-coin", "--coin-id", "0xcoin", "--amounts", "10", "20", "--gas-budget", "50000000"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v", args)
	}
}

func TestNativeTransferArgs(t *testing.T) {
	args := NativeTransferArgs("0xcoin", "0xdest", "777", 2_000_000)
	want := []string{"client", "pay-sui", "--input-coins", "0xcoin", "--recipients", "0xdest", "--amounts", "777", "--gas-budget", "2000000"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v", args)
	}
}
