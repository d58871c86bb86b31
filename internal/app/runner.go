package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/afuentes/suicoin/internal/coins"
	"github.com/afuentes/suicoin/internal/config"
	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/httpx"
	"github.com/afuentes/suicoin/internal/journal"
	"github.com/afuentes/suicoin/internal/model"
	"github.com/afuentes/suicoin/internal/ops"
	"github.com/afuentes/suicoin/internal/out"
	"github.com/afuentes/suicoin/internal/parse"
	"github.com/afuentes/suicoin/internal/policy"
	"github.com/afuentes/suicoin/internal/registry"
	"github.com/afuentes/suicoin/internal/rpc"
	"github.com/afuentes/suicoin/internal/suiexec"
	"github.com/afuentes/suicoin/internal/version"
	"github.com/afuentes/suicoin/internal/walrus"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	log         zerolog.Logger
	root        *cobra.Command
	lastCommand string

	aggregator *coins.Aggregator
	operations *ops.Service
	blobs      *walrus.Service
	journal    *journal.Store
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, log: zerolog.Nop()}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	err = normalizeRunError(err)
	if state.journal != nil {
		_ = state.journal.Close()
	}
	if err == nil {
		return 0
	}
	state.renderError("", err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Sui coin management CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			s.log = newLogger(s.runner.stderr, settings.Verbose)

			path := trimRootPath(cmd.CommandPath())
			s.lastCommand = path
			if err := policy.CheckCommandAllowed(settings.EnableCommands, path); err != nil {
				return err
			}
			return s.initServices(path)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	cmd.PersistentFlags().BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	cmd.PersistentFlags().StringVar(&s.flags.EnableCommands, "enable-commands", "", "Allowlist command paths (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Subprocess and RPC timeout")
	cmd.PersistentFlags().StringVar(&s.flags.Network, "network", "", "Network (mainnet|testnet|devnet|localnet)")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "Fullnode RPC endpoint override")
	cmd.PersistentFlags().Uint64Var(&s.flags.GasBudget, "gas-budget", 0, "Default gas budget in MIST")
	cmd.PersistentFlags().BoolVarP(&s.flags.Verbose, "verbose", "v", false, "Verbose diagnostic logging")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(s.newCoinsCommand())
	cmd.AddCommand(s.newWalrusCommand())
	cmd.AddCommand(s.newEnvCommand())
	cmd.AddCommand(s.newOpsCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// initServices wires the RPC aggregator and executors the command will need.
// RPC endpoint resolution failures surface here, before any work starts.
func (s *runtimeState) initServices(commandPath string) error {
	if s.settings.JournalEnabled && shouldOpenJournal(commandPath) && s.journal == nil {
		if err := os.MkdirAll(filepath.Dir(s.settings.JournalPath), 0o755); err != nil {
			return clierr.Wrap(clierr.CodeInternal, "create journal directory", err)
		}
		store, err := journal.Open(s.settings.JournalPath, s.settings.JournalLockPath)
		if err != nil {
			return clierr.Wrap(clierr.CodeInternal, "open operation journal", err)
		}
		s.journal = store
	}

	if s.aggregator == nil && usesRPC(commandPath) {
		endpoint, err := registry.ResolveFullnodeURL(s.settings.RPCURL, s.settings.Network)
		if err != nil {
			return err
		}
		httpClient := httpx.New(s.settings.Timeout, 0)
		rpcClient := rpc.New(httpClient, endpoint, s.log)
		s.aggregator = coins.NewAggregator(rpcClient, coins.NewMetadataCache(), s.settings.Network, s.log)
	}

	if s.operations == nil && usesSuiBinary(commandPath) {
		exec := suiexec.New(s.settings.SuiBinary, s.log)
		s.operations = ops.NewService(exec, s.journal, s.settings.Network, s.settings.GasBudget, s.log)
	}

	if s.blobs == nil && strings.HasPrefix(normalizeCommandPath(commandPath), "walrus") {
		exec := suiexec.New(s.settings.WalrusBinary, s.log)
		s.blobs = walrus.NewService(exec, s.log)
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) emitSuccess(commandPath string, data any, warnings []string) error {
	env := model.Envelope{
		Version:  model.EnvelopeVersion,
		Success:  true,
		Data:     data,
		Error:    nil,
		Warnings: warnings,
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
			Network:   s.settings.Network,
		},
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) renderError(commandPath string, err error) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	code := clierr.ExitCode(err)
	typ := "internal_error"
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Message
		if cErr.Cause != nil {
			message = fmt.Sprintf("%s: %v", cErr.Message, cErr.Cause)
		}
		switch cErr.Code {
		case clierr.CodeUsage:
			typ = "usage_error"
		case clierr.CodeNoEndpoint:
			typ = "no_endpoint"
		case clierr.CodeRPC:
			typ = "rpc_error"
		case clierr.CodeProcess:
			typ = "process_error"
		case clierr.CodeTimeout:
			typ = "timeout"
		case clierr.CodeParse:
			typ = "parse_error"
		case clierr.CodeUnavailable:
			typ = "endpoint_unavailable"
		case clierr.CodeBlocked:
			typ = "command_blocked"
		}
	}
	// Subprocess stderr and RPC messages may carry paths or key material;
	// nothing leaves unsanitized.
	message = parse.SanitizeError(message)

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Data:    []any{},
		Error: &model.ErrorBody{
			Code:    code,
			Type:    typ,
			Message: message,
		},
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
			Network:   s.settings.Network,
		},
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func newRequestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeCommandPath(commandPath string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(commandPath))), " ")
}

// usesRPC reports whether the command reads chain state over JSON-RPC.
func usesRPC(commandPath string) bool {
	switch normalizeCommandPath(commandPath) {
	case "coins list", "coins by-type", "coins metadata":
		return true
	default:
		return false
	}
}

// usesSuiBinary reports whether the command shells out to the chain CLI.
func usesSuiBinary(commandPath string) bool {
	switch normalizeCommandPath(commandPath) {
	case "coins split", "coins merge", "coins transfer", "env active-address", "env list":
		return true
	default:
		return false
	}
}

func shouldOpenJournal(commandPath string) bool {
	switch normalizeCommandPath(commandPath) {
	case "coins split", "coins merge", "coins transfer", "ops list":
		return true
	default:
		return false
	}
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
