package types

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/cometbft/cometbft/crypto/tmhash"
)

const (
	// AppName is the human-readable name reported by ABCI Info.
	AppName = "battlesol"

	// BaseDenom is the base currency used to pay for the presale.
	BaseDenom = "lamport"

	// ShipDenom is the game token sold by the presale and staked in games.
	ShipDenom = "ship"

	// ShipDecimals is the display precision of ShipDenom (and BaseDenom).
	ShipDecimals = 9

	// AddressPrefix prefixes every derived record address.
	AddressPrefix = "bsol1"
)

// Record namespaces used for derived addresses.
const (
	NamespaceConfig       = "config"
	NamespacePresale      = "presale"
	NamespacePresaleVault = "presale-vault"
	NamespaceGame         = "game"
	NamespaceGameVault    = "game-vault"
)

// DeriveAddress computes a record address from a namespace tag and optional seeds.
// The same inputs always produce the same address; there is no allocator.
func DeriveAddress(namespace string, seeds ...[]byte) string {
	n := len(namespace) + 1
	for _, s := range seeds {
		n += len(s)
	}
	buf := make([]byte, 0, n)
	buf = append(buf, namespace...)
	buf = append(buf, 0)
	for _, s := range seeds {
		buf = append(buf, s...)
	}
	return AddressPrefix + hex.EncodeToString(tmhash.SumTruncated(buf))
}

// IsDerivedAddress reports whether addr has the shape of a derived record address.
func IsDerivedAddress(addr string) bool {
	if len(addr) != len(AddressPrefix)+2*tmhash.TruncatedSize {
		return false
	}
	if addr[:len(AddressPrefix)] != AddressPrefix {
		return false
	}
	_, err := hex.DecodeString(addr[len(AddressPrefix):])
	return err == nil
}

func ConfigAddress() string       { return DeriveAddress(NamespaceConfig) }
func PresaleAddress() string      { return DeriveAddress(NamespacePresale) }
func PresaleVaultAddress() string { return DeriveAddress(NamespacePresaleVault) }

func GameAddress(gameID uint64) string {
	return DeriveAddress(NamespaceGame, u64le(gameID))
}

func GameVaultAddress(gameID uint64) string {
	return DeriveAddress(NamespaceGameVault, u64le(gameID))
}

// NamespaceAddress resolves a namespace and an optional decimal game id to its
// derived address. rawID must be empty for the singleton namespaces.
func NamespaceAddress(namespace, rawID string) (string, error) {
	switch namespace {
	case NamespaceConfig, NamespacePresale, NamespacePresaleVault:
		if rawID != "" {
			return "", ErrInvalidRequest.Wrapf("namespace %q takes no id", namespace)
		}
		return DeriveAddress(namespace), nil
	case NamespaceGame, NamespaceGameVault:
		if rawID == "" {
			return "", ErrInvalidRequest.Wrapf("namespace %q needs a game id", namespace)
		}
		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			return "", ErrInvalidRequest.Wrapf("invalid game id %q", rawID)
		}
		return DeriveAddress(namespace, u64le(id)), nil
	default:
		return "", ErrInvalidRequest.Wrapf("unknown namespace %q", namespace)
	}
}

func u64le(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}

// Store key prefixes.
var (
	HeightKey        = []byte{0x00}
	ConfigKey        = []byte{0x01}
	PresaleKey       = []byte{0x02}
	GameKeyPrefix    = []byte{0x03}
	BalanceKeyPrefix = []byte{0x04}
	SupplyKeyPrefix  = []byte{0x05}
	NonceKeyPrefix   = []byte{0x06}
	PubKeyKeyPrefix  = []byte{0x07}
)

// GameKey stores a Game by id: GameKeyPrefix || u64be(gameID).
func GameKey(gameID uint64) []byte {
	bz := make([]byte, 1+8)
	bz[0] = GameKeyPrefix[0]
	binary.BigEndian.PutUint64(bz[1:], gameID)
	return bz
}

// BalanceKey stores a balance: BalanceKeyPrefix || denom || 0x00 || addr.
func BalanceKey(denom, addr string) []byte {
	bz := make([]byte, 0, 1+len(denom)+1+len(addr))
	bz = append(bz, BalanceKeyPrefix[0])
	bz = append(bz, denom...)
	bz = append(bz, 0)
	bz = append(bz, addr...)
	return bz
}

func SupplyKey(denom string) []byte {
	return append([]byte{SupplyKeyPrefix[0]}, denom...)
}

func NonceKey(signer string) []byte {
	return append([]byte{NonceKeyPrefix[0]}, signer...)
}

func PubKeyKey(account string) []byte {
	return append([]byte{PubKeyKeyPrefix[0]}, account...)
}
