// Package commitment binds a player to a hidden fleet layout before a match and
// checks the reveal afterwards.
//
// Encoding (per ship, in caller order, no padding, no sorting):
//
//	shipID(1) || cellCount(1) || { row(1) || col(1) } * cellCount
//
// The digest is SHA-256(encoding || u64le(nonce)). Callers must keep ship and
// cell order stable between commit and reveal: a reordered fleet is a
// different commitment.
package commitment

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cometbft/cometbft/crypto/tmhash"

	"battlesol/internal/types"
)

// DigestSize is the byte length of a commitment digest.
const DigestSize = tmhash.Size

// MaxCellsPerShip is the largest cell count the one-byte length prefix can carry.
const MaxCellsPerShip = 255

type Cell struct {
	Row uint8 `json:"row"`
	Col uint8 `json:"col"`
}

type ShipPlacement struct {
	ShipID uint8  `json:"shipId"`
	Cells  []Cell `json:"cells"`
}

// Fleet is an ordered set of ship placements.
type Fleet []ShipPlacement

// Digest is a 32-byte commitment. It marshals as 0x-prefixed hex.
type Digest [DigestSize]byte

func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Digest) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("digest: %w", err)
	}
	parsed, err := ParseDigest(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest decodes a hex digest, with or without the 0x prefix.
func ParseDigest(s string) (Digest, error) {
	ss := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(ss) != 2*DigestSize {
		return Digest{}, fmt.Errorf("digest: want %d hex chars, got %d", 2*DigestSize, len(ss))
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: %w", err)
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

// Encode returns the canonical byte encoding of fleet.
func Encode(fleet Fleet) ([]byte, error) {
	n := 0
	for i, ship := range fleet {
		if len(ship.Cells) > MaxCellsPerShip {
			return nil, types.ErrInvalidRequest.Wrapf("ship %d (index %d) has %d cells, max %d", ship.ShipID, i, len(ship.Cells), MaxCellsPerShip)
		}
		n += 2 + 2*len(ship.Cells)
	}
	out := make([]byte, 0, n)
	for _, ship := range fleet {
		out = append(out, ship.ShipID, uint8(len(ship.Cells)))
		for _, c := range ship.Cells {
			out = append(out, c.Row, c.Col)
		}
	}
	return out, nil
}

// Commit hashes the fleet encoding together with the nonce.
func Commit(fleet Fleet, nonce uint64) (Digest, error) {
	enc, err := Encode(fleet)
	if err != nil {
		return Digest{}, err
	}
	buf := make([]byte, len(enc)+8)
	copy(buf, enc)
	binary.LittleEndian.PutUint64(buf[len(enc):], nonce)

	var d Digest
	copy(d[:], tmhash.Sum(buf))
	return d, nil
}

// Verify recomputes the commitment for (fleet, nonce) and requires an exact
// match with want.
func Verify(fleet Fleet, nonce uint64, want Digest) error {
	got, err := Commit(fleet, nonce)
	if err != nil {
		return types.ErrInvalidCommitment.Wrap(err.Error())
	}
	if !bytes.Equal(got[:], want[:]) {
		return types.ErrInvalidCommitment.Wrapf("reveal hashes to %s, committed %s", got, want)
	}
	return nil
}

// CellCount returns the total number of cells across the fleet.
func (f Fleet) CellCount() int {
	n := 0
	for _, s := range f {
		n += len(s.Cells)
	}
	return n
}

// Clone returns a deep copy of f.
func (f Fleet) Clone() Fleet {
	if f == nil {
		return nil
	}
	out := make(Fleet, len(f))
	for i, s := range f {
		out[i] = ShipPlacement{ShipID: s.ShipID, Cells: append([]Cell(nil), s.Cells...)}
	}
	return out
}
