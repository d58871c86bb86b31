package coins

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/model"
	"github.com/afuentes/suicoin/internal/registry"
	"github.com/afuentes/suicoin/internal/rpc"
)

const defaultPageSize = 50

// CoinReader is the slice of the RPC client the aggregator consumes.
type CoinReader interface {
	GetAllCoins(ctx context.Context, address string, pageSize int, each func(rpc.CoinObject) error) error
	GetCoins(ctx context.Context, address, coinType string, pageSize int, each func(rpc.CoinObject) error) error
	GetCoinMetadata(ctx context.Context, coinType string) (model.TokenMetadata, error)
}

// Aggregator groups the coin objects of an address by coin type, resolving
// display metadata through the cache and the curated token table.
type Aggregator struct {
	reader   CoinReader
	cache    *MetadataCache
	network  string
	pageSize int
	log      zerolog.Logger
}

func NewAggregator(reader CoinReader, cache *MetadataCache, network string, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		reader:   reader,
		cache:    cache,
		network:  network,
		pageSize: defaultPageSize,
		log:      log,
	}
}

// GetCoinsGrouped fetches every coin object owned by address and builds one
// group per coin type, ordered curated-first.
func (a *Aggregator) GetCoinsGrouped(ctx context.Context, address string) (*model.GroupedCoins, error) {
	if a.reader == nil {
		return nil, clierr.New(clierr.CodeNoEndpoint, "no active rpc endpoint")
	}

	// Partition records by coin type in first-seen order. The provisional
	// order only has to be deterministic; the final sort replaces it.
	byType := make(map[string][]coinEntry)
	var typeOrder []string
	err := a.reader.GetAllCoins(ctx, address, a.pageSize, func(coin rpc.CoinObject) error {
		entry, err := newCoinEntry(coin)
		if err != nil {
			return err
		}
		if _, seen := byType[coin.CoinType]; !seen {
			typeOrder = append(typeOrder, coin.CoinType)
		}
		byType[coin.CoinType] = append(byType[coin.CoinType], entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metaByType := a.fetchMetadata(ctx, typeOrder)

	groups := make([]model.CoinGroup, 0, len(typeOrder))
	totalCoins := 0
	for _, coinType := range typeOrder {
		group := a.buildGroup(coinType, byType[coinType], metaByType[coinType])
		totalCoins += group.CoinCount
		groups = append(groups, group)
	}
	a.sortGroups(groups)

	return &model.GroupedCoins{
		Groups:      groups,
		TotalGroups: len(groups),
		TotalCoins:  totalCoins,
	}, nil
}

// GetCoinsByType builds the group for a single coin type via suix_getCoins.
func (a *Aggregator) GetCoinsByType(ctx context.Context, address, coinType string) (*model.CoinGroup, error) {
	if a.reader == nil {
		return nil, clierr.New(clierr.CodeNoEndpoint, "no active rpc endpoint")
	}
	var entries []coinEntry
	err := a.reader.GetCoins(ctx, address, coinType, a.pageSize, func(coin rpc.CoinObject) error {
		entry, err := newCoinEntry(coin)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	meta, ok := a.cachedMetadata(ctx, coinType)
	var metaPtr *model.TokenMetadata
	if ok {
		metaPtr = &meta
	}
	group := a.buildGroup(coinType, entries, metaPtr)
	return &group, nil
}

// GetCoinMetadata serves metadata through the TTL cache, refetching once an
// entry has gone stale.
func (a *Aggregator) GetCoinMetadata(ctx context.Context, coinType string) (model.TokenMetadata, error) {
	if a.reader == nil {
		return model.TokenMetadata{}, clierr.New(clierr.CodeNoEndpoint, "no active rpc endpoint")
	}
	if meta, ok := a.cache.Get(coinType); ok {
		return meta, nil
	}
	meta, err := a.reader.GetCoinMetadata(ctx, coinType)
	if err != nil {
		return model.TokenMetadata{}, err
	}
	a.cache.Set(coinType, meta)
	return meta, nil
}

type coinEntry struct {
	record  model.CoinRecord
	balance *big.Int
}

func newCoinEntry(coin rpc.CoinObject) (coinEntry, error) {
	balance, ok := new(big.Int).SetString(coin.Balance, 10)
	if !ok || balance.Sign() < 0 {
		return coinEntry{}, clierr.New(clierr.CodeRPC, fmt.Sprintf("coin %s has invalid balance %q", coin.CoinObjectID, coin.Balance))
	}
	return coinEntry{
		record: model.CoinRecord{
			ObjectID: coin.CoinObjectID,
			CoinType: coin.CoinType,
			Balance:  coin.Balance,
			Version:  coin.Version,
			Digest:   coin.Digest,
		},
		balance: balance,
	}, nil
}

// fetchMetadata resolves metadata for each distinct coin type concurrently,
// joining on all fetches before the groups are built. Failures fall back to
// the curated table or the derived symbol.
func (a *Aggregator) fetchMetadata(ctx context.Context, coinTypes []string) map[string]*model.TokenMetadata {
	results := make(map[string]*model.TokenMetadata, len(coinTypes))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, coinType := range coinTypes {
		wg.Add(1)
		go func(coinType string) {
			defer wg.Done()
			meta, ok := a.cachedMetadata(ctx, coinType)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				results[coinType] = &meta
			}
		}(coinType)
	}
	wg.Wait()
	return results
}

func (a *Aggregator) cachedMetadata(ctx context.Context, coinType string) (model.TokenMetadata, bool) {
	if meta, ok := a.cache.Get(coinType); ok {
		return meta, true
	}
	meta, err := a.reader.GetCoinMetadata(ctx, coinType)
	if err != nil {
		a.log.Debug().Str("coin_type", coinType).Err(err).Msg("metadata unavailable")
		return model.TokenMetadata{}, false
	}
	a.cache.Set(coinType, meta)
	return meta, true
}

func (a *Aggregator) buildGroup(coinType string, entries []coinEntry, meta *model.TokenMetadata) model.CoinGroup {
	total := new(big.Int)
	for _, e := range entries {
		total.Add(total, e.balance)
	}

	// Coins inside a group sort descending by balance; equal balances keep
	// their fetch order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].balance.Cmp(entries[j].balance) > 0
	})
	records := make([]model.CoinRecord, len(entries))
	for i, e := range entries {
		records[i] = e.record
	}

	known, isKnown := registry.LookupToken(a.network, coinType)

	symbol := DeriveSymbol(coinType)
	name := symbol
	decimals := registry.NativeDecimals
	description := ""
	switch {
	case meta != nil:
		symbol = meta.Symbol
		name = meta.Name
		decimals = meta.Decimals
		description = meta.Description
	case isKnown:
		symbol = known.Symbol
		name = known.Name
		description = known.Description
	}

	packageID, moduleName := ParseCoinTypeParts(coinType)
	return model.CoinGroup{
		CoinType:         coinType,
		Symbol:           symbol,
		Name:             name,
		Decimals:         decimals,
		TotalBalance:     total.String(),
		FormattedBalance: FormatBalance(total, decimals),
		Coins:            records,
		CoinCount:        len(records),
		PackageID:        packageID,
		ModuleName:       moduleName,
		Verified:         registry.IsVerifiedToken(a.network, coinType),
		Description:      description,
	}
}

// sortGroups orders curated tokens ascending by priority, then everything
// else descending by total balance. Ties keep the provisional order, which
// is first-seen and therefore stable for the same input.
func (a *Aggregator) sortGroups(groups []model.CoinGroup) {
	priority := func(g model.CoinGroup) int {
		return registry.TokenPriority(a.network, g.CoinType)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		pi, pj := priority(groups[i]), priority(groups[j])
		if pi != pj {
			return pi < pj
		}
		if pi == registry.UnknownPriority {
			bi, okI := new(big.Int).SetString(groups[i].TotalBalance, 10)
			bj, okJ := new(big.Int).SetString(groups[j].TotalBalance, 10)
			if okI && okJ {
				return bi.Cmp(bj) > 0
			}
		}
		return false
	})
}
