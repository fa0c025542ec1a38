// internal/blockchain/solbc/token_metadata.go
package solbc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	metadataSeed = "metadata"

	// MetadataKeyV1 is the account discriminator of a Metaplex metadata record.
	MetadataKeyV1 uint8 = 4

	maxMetadataString = 1024
	maxCreators       = 5
)

var ErrInvalidMetadata = errors.New("invalid metadata account")

// Creator is a verified or unverified creator listed on the token metadata.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// TokenMetadata is the leading, fixed part of a Metaplex metadata account.
type TokenMetadata struct {
	Key                  uint8
	UpdateAuthority      solana.PublicKey
	Mint                 solana.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
}

// MetadataAddress derives the metadata PDA for a mint:
// seeds ["metadata", programID, mint] under programID.
func MetadataAddress(programID, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(metadataSeed),
		programID[:],
		mint[:],
	}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return addr, nil
}

// DecodeTokenMetadata parses the borsh-encoded metadata record.
func DecodeTokenMetadata(data []byte) (*TokenMetadata, error) {
	dec := bin.NewBorshDecoder(data)
	md := &TokenMetadata{}

	var err error
	if md.Key, err = dec.ReadUint8(); err != nil {
		return nil, wrapMetadataErr("key", err)
	}
	if md.Key != MetadataKeyV1 {
		return nil, fmt.Errorf("%w: unexpected key %d", ErrInvalidMetadata, md.Key)
	}
	if md.UpdateAuthority, err = readPublicKey(dec); err != nil {
		return nil, wrapMetadataErr("update_authority", err)
	}
	if md.Mint, err = readPublicKey(dec); err != nil {
		return nil, wrapMetadataErr("mint", err)
	}
	if md.Name, err = readString(dec); err != nil {
		return nil, wrapMetadataErr("name", err)
	}
	if md.Symbol, err = readString(dec); err != nil {
		return nil, wrapMetadataErr("symbol", err)
	}
	if md.URI, err = readString(dec); err != nil {
		return nil, wrapMetadataErr("uri", err)
	}
	if md.SellerFeeBasisPoints, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return nil, wrapMetadataErr("seller_fee_basis_points", err)
	}

	hasCreators, err := dec.ReadUint8()
	if err != nil {
		return nil, wrapMetadataErr("creators", err)
	}
	if hasCreators == 1 {
		if md.Creators, err = readCreators(dec); err != nil {
			return nil, wrapMetadataErr("creators", err)
		}
	}

	if md.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return nil, wrapMetadataErr("primary_sale_happened", err)
	}
	if md.IsMutable, err = dec.ReadBool(); err != nil {
		return nil, wrapMetadataErr("is_mutable", err)
	}

	return md, nil
}

func readCreators(dec *bin.Decoder) ([]Creator, error) {
	count, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if count > maxCreators {
		return nil, fmt.Errorf("too many creators: %d", count)
	}

	creators := make([]Creator, 0, count)
	for i := uint32(0); i < count; i++ {
		var c Creator
		if c.Address, err = readPublicKey(dec); err != nil {
			return nil, err
		}
		if c.Verified, err = dec.ReadBool(); err != nil {
			return nil, err
		}
		if c.Share, err = dec.ReadUint8(); err != nil {
			return nil, err
		}
		creators = append(creators, c)
	}
	return creators, nil
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// readString reads a u32-prefixed string; Metaplex pads fixed-width fields with NULs.
func readString(dec *bin.Decoder) (string, error) {
	length, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return "", err
	}
	if length > maxMetadataString {
		return "", fmt.Errorf("string too long: %d", length)
	}
	raw, err := dec.ReadNBytes(int(length))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}

func wrapMetadataErr(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidMetadata, field, err)
}
