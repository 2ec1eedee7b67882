package scope

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"insightval/internal/repository"
)

// Type is a scope predicate kind.
type Type string

const (
	TypeSymbol     Type = "symbol"
	TypeTag        Type = "tag"
	TypeKind       Type = "kind"
	TypeAssetClass Type = "asset_class"
	TypeMarket     Type = "market"
	TypeDomain     Type = "domain"
	TypeWatchlist  Type = "watchlist"
)

// WatchlistAll selects every watchlist member regardless of group.
const WatchlistAll = "all"

// DefaultWatchlistGroup owns members stored without a group.
const DefaultWatchlistGroup = "default"

func Types() []Type {
	return []Type{TypeSymbol, TypeTag, TypeKind, TypeAssetClass, TypeMarket, TypeDomain, TypeWatchlist}
}

func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := resolvers[t]
	return t, ok
}

// Resolver turns one scope predicate into the set of symbols it denotes
// against current reference data.
type Resolver struct {
	Market   repository.MarketDataRepository
	Business repository.BusinessDataRepository
	Logger   *zap.Logger
}

type resolveFunc func(ctx context.Context, r *Resolver, key string) ([]string, error)

var resolvers = map[Type]resolveFunc{
	TypeSymbol:     resolveSymbol,
	TypeTag:        resolveTag,
	TypeKind:       profileResolver(repository.ProfileKind),
	TypeAssetClass: profileResolver(repository.ProfileAssetClass),
	TypeMarket:     profileResolver(repository.ProfileMarket),
	TypeDomain:     resolveDomain,
	TypeWatchlist:  resolveWatchlist,
}

// Resolve returns the sorted, de-duplicated symbols of (scopeType, scopeKey).
// No match and unknown scope types both yield an empty set.
func (r *Resolver) Resolve(ctx context.Context, scopeType string, scopeKey string) ([]string, error) {
	t, ok := ParseType(scopeType)
	if !ok {
		if r.Logger != nil {
			r.Logger.Warn("unknown scope type ignored", zap.String("scope_type", scopeType))
		}
		return nil, nil
	}
	key := strings.TrimSpace(scopeKey)
	if key == "" {
		return nil, nil
	}
	symbols, err := resolvers[t](ctx, r, key)
	if err != nil {
		return nil, err
	}
	return normalize(symbols), nil
}

func resolveSymbol(_ context.Context, _ *Resolver, key string) ([]string, error) {
	return []string{key}, nil
}

// resolveTag unions the provider tag index and the user tag index.
func resolveTag(ctx context.Context, r *Resolver, key string) ([]string, error) {
	var out []string
	if r.Market != nil {
		symbols, err := r.Market.ListSymbolsByProviderTag(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, symbols...)
	}
	if r.Business != nil {
		symbols, err := r.Business.ListSymbolsByUserTag(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, symbols...)
	}
	return out, nil
}

func profileResolver(field repository.ProfileField) resolveFunc {
	return func(ctx context.Context, r *Resolver, key string) ([]string, error) {
		if r.Market == nil {
			return nil, nil
		}
		return r.Market.ListSymbolsByProfileField(ctx, field, key)
	}
}

func resolveWatchlist(ctx context.Context, r *Resolver, key string) ([]string, error) {
	if r.Business == nil {
		return nil, nil
	}
	if strings.EqualFold(key, WatchlistAll) {
		return r.Business.ListWatchlistSymbols(ctx, nil)
	}
	return r.Business.ListWatchlistSymbols(ctx, &key)
}

func resolveDomain(ctx context.Context, r *Resolver, key string) ([]string, error) {
	preds, ok := domains[strings.ToLower(key)]
	if !ok {
		return nil, nil
	}
	var out []string
	for _, p := range preds {
		var (
			symbols []string
			err     error
		)
		if p.tag != "" {
			symbols, err = resolveTag(ctx, r, p.tag)
		} else {
			symbols, err = profileResolver(p.field)(ctx, r, p.value)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, symbols...)
	}
	return out, nil
}

func normalize(symbols []string) []string {
	if len(symbols) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
