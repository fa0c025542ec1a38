// internal/filter/mutable.go
package filter

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pool-filter/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

const (
	msgFetchFailed   = "Mutable -> Failed to fetch account data"
	msgDecodeFailed  = "Mutable -> Failed to decode metadata"
	msgNoSocials     = "MutableSocials -> Token has no socials"
	msgSocialsFailed = "MutableSocials -> Failed to check socials"
)

// MutableFilter requires readable Metaplex metadata for the base mint and,
// optionally, at least one social link in the off-chain document.
type MutableFilter struct {
	chain        ChainReader
	documents    DocumentFetcher
	programID    solana.PublicKey
	checkSocials bool
	logger       *zap.Logger
}

func NewMutableFilter(chain ChainReader, documents DocumentFetcher, checkSocials bool, logger *zap.Logger) *MutableFilter {
	return &MutableFilter{
		chain:        chain,
		documents:    documents,
		programID:    raydium.MetadataProgramID,
		checkSocials: checkSocials,
		logger:       logger.Named("mutable-filter"),
	}
}

func (f *MutableFilter) Name() string { return "mutable" }

func (f *MutableFilter) Execute(ctx context.Context, keys *raydium.PoolKeys) Result {
	address, err := solbc.MetadataAddress(f.programID, keys.BaseMint)
	if err != nil {
		f.logger.Warn("failed to derive metadata address",
			zap.String("mint", keys.BaseMint.String()),
			zap.Error(err))
		return reject(msgFetchFailed)
	}

	data, err := f.chain.GetAccountData(ctx, address)
	if err != nil || len(data) == 0 {
		return reject(msgFetchFailed)
	}

	metadata, err := solbc.DecodeTokenMetadata(data)
	if err != nil {
		f.logger.Warn("failed to decode metadata",
			zap.String("mint", keys.BaseMint.String()),
			zap.Error(err))
		return reject(msgDecodeFailed)
	}

	if !f.checkSocials {
		return pass()
	}

	document, err := f.documents.FetchDocument(ctx, metadata.URI)
	if err != nil {
		f.logger.Warn(msgSocialsFailed,
			zap.String("mint", keys.BaseMint.String()),
			zap.String("uri", metadata.URI),
			zap.Error(err))
		return reject(msgSocialsFailed)
	}

	if !HasSocials(document) {
		return reject(msgNoSocials)
	}
	return pass()
}

// HasSocials reports whether any value under "extensions" is non-empty.
func HasSocials(document map[string]any) bool {
	extensions, ok := document["extensions"].(map[string]any)
	if !ok {
		return false
	}

	for _, value := range extensions {
		switch v := value.(type) {
		case nil:
		case string:
			if v != "" {
				return true
			}
		case []any:
			if len(v) > 0 {
				return true
			}
		case map[string]any:
			if len(v) > 0 {
				return true
			}
		}
	}
	return false
}
