package ptb

import "github.com/afuentes/suicoin/internal/registry"

// Operation identifies which coin operation a command is built for.
type Operation int

const (
	OpSplit Operation = iota
	OpMerge
	OpTransfer
)

func (o Operation) String() string {
	switch o {
	case OpSplit:
		return "split"
	case OpMerge:
		return "merge"
	case OpTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Path selects between the dedicated gas-coin subcommands and the generic
// programmable transaction block.
type Path int

const (
	PathNative Path = iota
	PathGeneric
)

func (p Path) String() string {
	if p == PathNative {
		return "native"
	}
	return "generic"
}

// SelectPath returns PathNative only for the gas coin, and never for merge:
// the native merge subcommand accepts a single coin pair per call, while one
// transaction block merges an arbitrary list.
func SelectPath(op Operation, coinType string) Path {
	if op == OpMerge {
		return PathGeneric
	}
	if registry.IsNativeCoin(coinType) {
		return PathNative
	}
	return PathGeneric
}
