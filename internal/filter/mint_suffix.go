// internal/filter/mint_suffix.go
package filter

import (
	"context"
	"strings"

	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

// PumpSuffix is the vanity ending of mints created by pump.fun.
const PumpSuffix = "pump"

// MintSuffixFilter accepts pools where either mint ends with the platform suffix.
type MintSuffixFilter struct {
	suffix string
}

func NewMintSuffixFilter() *MintSuffixFilter {
	return &MintSuffixFilter{suffix: PumpSuffix}
}

func (f *MintSuffixFilter) Name() string { return "mint_suffix" }

func (f *MintSuffixFilter) Execute(_ context.Context, keys *raydium.PoolKeys) Result {
	if strings.HasSuffix(keys.BaseMint.String(), f.suffix) ||
		strings.HasSuffix(keys.QuoteMint.String(), f.suffix) {
		return pass()
	}
	return reject("MintSuffix -> Neither mint ends with %q", f.suffix)
}
