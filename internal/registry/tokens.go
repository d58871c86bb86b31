package registry

// KnownToken is a curated display entry for a coin type. Priority orders
// curated tokens in grouped listings; everything else sorts after them.
type KnownToken struct {
	Name        string
	Symbol      string
	Priority    int
	Verified    bool
	Description string
	IconURL     string
}

// UnknownPriority is the sentinel returned for coin types outside the
// curated table.
const UnknownPriority = 999

var knownTokensByNetwork = map[string]map[string]KnownToken{
	"mainnet": {
		NativeCoinType: {
			Name:        "Sui",
			Symbol:      "SUI",
			Priority:    1,
			Verified:    true,
			Description: "The native gas token of the Sui network",
		},
		"0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC": {
			Name:        "USD Coin",
			Symbol:      "USDC",
			Priority:    2,
			Verified:    true,
			Description: "Native USDC issued by Circle",
		},
		"0xc060006111016b8a020ad5b33834984a437aaa7d3c74c18e09a95d48aceab08c::coin::COIN": {
			Name:        "Tether USD",
			Symbol:      "USDT",
			Priority:    3,
			Verified:    true,
			Description: "Wormhole-wrapped USDT",
		},
		"0xdeeb7a4662eec9f2f3def03fb937a663dddaa2e215b8078a284d026b7946c270::deep::DEEP": {
			Name:     "DeepBook",
			Symbol:   "DEEP",
			Priority: 4,
			Verified: true,
		},
		"0x06864a6f921804860930db6ddbe2e16acdf8504495ea7481637a1c8b9a8fe54b::cetus::CETUS": {
			Name:     "Cetus",
			Symbol:   "CETUS",
			Priority: 5,
			Verified: true,
		},
		"0x356a26eb9e012a68958082340d4c4116e7f55615cf27affcff209cf0ae544f59::wal::WAL": {
			Name:     "Walrus",
			Symbol:   "WAL",
			Priority: 6,
			Verified: true,
		},
	},
	"testnet": {
		NativeCoinType: {
			Name:        "Sui",
			Symbol:      "SUI",
			Priority:    1,
			Verified:    true,
			Description: "The native gas token of the Sui network",
		},
		"0xa1ec7fc00a6f40db9693ad1415d0c193ad3906494428cf252621037bd7117e29::usdc::USDC": {
			Name:     "USD Coin (testnet)",
			Symbol:   "USDC",
			Priority: 2,
			Verified: true,
		},
	},
	"devnet": {
		NativeCoinType: {
			Name:     "Sui",
			Symbol:   "SUI",
			Priority: 1,
			Verified: true,
		},
	},
	"localnet": {
		NativeCoinType: {
			Name:     "Sui",
			Symbol:   "SUI",
			Priority: 1,
			Verified: true,
		},
	},
}

func LookupToken(network, coinType string) (KnownToken, bool) {
	table, ok := knownTokensByNetwork[normalizeNetwork(network)]
	if !ok {
		return KnownToken{}, false
	}
	t := coinType
	if IsNativeCoin(coinType) {
		t = NativeCoinType
	}
	entry, ok := table[t]
	return entry, ok
}

func TokenPriority(network, coinType string) int {
	if entry, ok := LookupToken(network, coinType); ok {
		return entry.Priority
	}
	return UnknownPriority
}

func IsVerifiedToken(network, coinType string) bool {
	entry, ok := LookupToken(network, coinType)
	return ok && entry.Verified
}
