package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type GlobalFlags struct {
	ConfigPath     string
	JSON           bool
	Plain          bool
	Select         string
	ResultsOnly    bool
	EnableCommands string
	Timeout        string
	Network        string
	RPCURL         string
	GasBudget      uint64
	Verbose        bool
}

type Settings struct {
	OutputMode      string
	SelectFields    []string
	ResultsOnly     bool
	EnableCommands  []string
	Timeout         time.Duration
	Network         string
	RPCURL          string
	SuiBinary       string
	WalrusBinary    string
	GasBudget       uint64
	JournalEnabled  bool
	JournalPath     string
	JournalLockPath string
	Verbose         bool
}

type fileConfig struct {
	Output    string  `yaml:"output"`
	Timeout   string  `yaml:"timeout"`
	Network   string  `yaml:"network"`
	RPCURL    string  `yaml:"rpc_url"`
	GasBudget *uint64 `yaml:"gas_budget"`
	Binaries  struct {
		Sui    string `yaml:"sui"`
		Walrus string `yaml:"walrus"`
	} `yaml:"binaries"`
	Journal struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 60 * time.Second
	}
	if settings.Network == "" {
		settings.Network = "mainnet"
	}

	return settings, nil
}

func defaultSettings() (Settings, error) {
	journalPath, lockPath, err := defaultJournalPaths()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		OutputMode:      "json",
		Timeout:         60 * time.Second,
		Network:         "mainnet",
		SuiBinary:       "sui",
		WalrusBinary:    "walrus",
		JournalEnabled:  true,
		JournalPath:     journalPath,
		JournalLockPath: lockPath,
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "suicoin", "config.yaml"), nil
}

func defaultJournalPaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "suicoin")
	return filepath.Join(dir, "operations.db"), filepath.Join(dir, "operations.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Network != "" {
		settings.Network = strings.ToLower(strings.TrimSpace(cfg.Network))
	}
	if cfg.RPCURL != "" {
		settings.RPCURL = cfg.RPCURL
	}
	if cfg.GasBudget != nil {
		settings.GasBudget = *cfg.GasBudget
	}
	if cfg.Binaries.Sui != "" {
		settings.SuiBinary = cfg.Binaries.Sui
	}
	if cfg.Binaries.Walrus != "" {
		settings.WalrusBinary = cfg.Binaries.Walrus
	}
	if cfg.Journal.Enabled != nil {
		settings.JournalEnabled = *cfg.Journal.Enabled
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}

	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("SUICOIN_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("SUICOIN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("SUICOIN_NETWORK"); v != "" {
		settings.Network = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SUICOIN_RPC_URL"); v != "" {
		settings.RPCURL = v
	}
	if v := os.Getenv("SUICOIN_GAS_BUDGET"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			settings.GasBudget = n
		}
	}
	if v := os.Getenv("SUICOIN_SUI_BINARY"); v != "" {
		settings.SuiBinary = v
	}
	if v := os.Getenv("SUICOIN_WALRUS_BINARY"); v != "" {
		settings.WalrusBinary = v
	}
	if v := os.Getenv("SUICOIN_NO_JOURNAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.JournalEnabled = !b
		}
	}
	if v := os.Getenv("SUICOIN_JOURNAL_PATH"); v != "" {
		settings.JournalPath = v
	}
	if v := os.Getenv("SUICOIN_JOURNAL_LOCK_PATH"); v != "" {
		settings.JournalLockPath = v
	}
	if v := os.Getenv("SUICOIN_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.Verbose = b
		}
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.Select) != "" {
		settings.SelectFields = splitList(flags.Select)
	}
	settings.ResultsOnly = flags.ResultsOnly

	if strings.TrimSpace(flags.EnableCommands) != "" {
		settings.EnableCommands = splitList(flags.EnableCommands)
	}

	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Network != "" {
		settings.Network = strings.ToLower(strings.TrimSpace(flags.Network))
	}
	if flags.RPCURL != "" {
		settings.RPCURL = flags.RPCURL
	}
	if flags.GasBudget > 0 {
		settings.GasBudget = flags.GasBudget
	}
	if flags.Verbose {
		settings.Verbose = true
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}

	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		v := strings.TrimSpace(part)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
