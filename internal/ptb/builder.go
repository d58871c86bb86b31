package ptb

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultGasBudget is applied when the caller does not set one (base units).
const DefaultGasBudget uint64 = 50_000_000

// step is one typed instruction of a transaction block. Keeping the steps
// typed (instead of interpolating strings at call sites) concentrates the
// result-index bookkeeping here.
type step interface {
	appendArgs(args []string) []string
}

type splitCoins struct {
	coin    string
	amounts []string
}

func (s splitCoins) appendArgs(args []string) []string {
	return append(args, "--split-coins", objectRef(s.coin), bracketList(s.amounts))
}

type assign struct {
	name string
}

func (a assign) appendArgs(args []string) []string {
	return append(args, "--assign", a.name)
}

type mergeCoins struct {
	primary string
	sources []string
}

func (m mergeCoins) appendArgs(args []string) []string {
	refs := make([]string, len(m.sources))
	for i, src := range m.sources {
		refs[i] = objectRef(src)
	}
	return append(args, "--merge-coins", objectRef(m.primary), bracketList(refs))
}

type transferObjects struct {
	objects   []string
	recipient string
}

func (t transferObjects) appendArgs(args []string) []string {
	return append(args, "--transfer-objects", bracketList(t.objects), objectRef(t.recipient))
}

// Builder accumulates typed steps and renders them to the argument vector of
// the tool's transaction-block subcommand.
type Builder struct {
	steps     []step
	gasBudget uint64
	dryRun    bool
}

func NewBuilder() *Builder {
	return &Builder{gasBudget: DefaultGasBudget}
}

func (b *Builder) SplitCoins(coin string, amounts []string) *Builder {
	b.steps = append(b.steps, splitCoins{coin: coin, amounts: amounts})
	return b
}

func (b *Builder) Assign(name string) *Builder {
	b.steps = append(b.steps, assign{name: name})
	return b
}

func (b *Builder) MergeCoins(primary string, sources []string) *Builder {
	b.steps = append(b.steps, mergeCoins{primary: primary, sources: sources})
	return b
}

func (b *Builder) TransferObjects(objects []string, recipient string) *Builder {
	b.steps = append(b.steps, transferObjects{objects: objects, recipient: recipient})
	return b
}

func (b *Builder) GasBudget(budget uint64) *Builder {
	if budget > 0 {
		b.gasBudget = budget
	}
	return b
}

func (b *Builder) DryRun() *Builder {
	b.dryRun = true
	return b
}

// Args renders the full argument vector for the executor.
func (b *Builder) Args() []string {
	args := []string{"client", "ptb"}
	for _, s := range b.steps {
		args = s.appendArgs(args)
	}
	args = append(args, "--gas-budget", strconv.FormatUint(b.gasBudget, 10))
	if b.dryRun {
		args = append(args, "--dry-run")
	}
	return args
}

// ResultRefs produces the positional references into a named step result:
// name.0 through name.(n-1). The count must equal the producing step's
// result arity; a mismatch is a bug in the calling code.
func ResultRefs(name string, n int) []string {
	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("%s.%d", name, i)
	}
	return refs
}

// NativeSplitArgs builds the dedicated gas-coin split subcommand.
func NativeSplitArgs(coinID string, amounts []string, gasBudget uint64) []string {
	if gasBudget == 0 {
		gasBudget = DefaultGasBudget
	}
	args := []string{"client", "split-coin", "--coin-id", coinID, "--amounts"}
	args = append(args, amounts...)
	return append(args, "--gas-budget", strconv.FormatUint(gasBudget, 10))
}

// NativeTransferArgs builds the gas-coin pay form: same-token transfer of
// one amount to one recipient.
func NativeTransferArgs(coinID, recipient, amount string, gasBudget uint64) []string {
	if gasBudget == 0 {
		gasBudget = DefaultGasBudget
	}
	return []string{
		"client", "pay-sui",
		"--input-coins", coinID,
		"--recipients", recipient,
		"--amounts", amount,
		"--gas-budget", strconv.FormatUint(gasBudget, 10),
	}
}

func objectRef(id string) string {
	if strings.HasPrefix(id, "@") || strings.Contains(id, ".") {
		return id
	}
	return "@" + id
}

func bracketList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
