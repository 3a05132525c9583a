package state

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	dbm "github.com/cosmos/cosmos-db"

	"battlesol/internal/types"
)

// Load reads the state stored in db. An empty db yields a fresh state.
func Load(db dbm.DB) (*State, error) {
	s := NewState()

	it, err := db.Iterator(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open state iterator: %w", err)
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		if err := s.loadRecord(it.Key(), it.Value()); err != nil {
			return nil, err
		}
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	return s, nil
}

func (s *State) loadRecord(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("empty state key")
	}
	body := key[1:]
	switch key[0] {
	case types.HeightKey[0]:
		if len(value) != 8 {
			return fmt.Errorf("bad height record")
		}
		s.Height = int64(binary.BigEndian.Uint64(value))
	case types.ConfigKey[0]:
		var c Config
		if err := json.Unmarshal(value, &c); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
		s.Config = &c
	case types.PresaleKey[0]:
		var p Presale
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("decode presale: %w", err)
		}
		s.Presale = &p
	case types.GameKeyPrefix[0]:
		var g Game
		if err := json.Unmarshal(value, &g); err != nil {
			return fmt.Errorf("decode game: %w", err)
		}
		if len(body) != 8 || binary.BigEndian.Uint64(body) != g.ID {
			return fmt.Errorf("game %d stored under mismatched key %x", g.ID, key)
		}
		s.Games[g.ID] = &g
	case types.BalanceKeyPrefix[0]:
		i := bytes.IndexByte(body, 0)
		if i <= 0 {
			return fmt.Errorf("bad balance key %x", key)
		}
		amount, err := decodeU64(value)
		if err != nil {
			return fmt.Errorf("balance %x: %w", key, err)
		}
		s.setBalance(string(body[:i]), string(body[i+1:]), amount)
	case types.SupplyKeyPrefix[0]:
		amount, err := decodeU64(value)
		if err != nil {
			return fmt.Errorf("supply %x: %w", key, err)
		}
		s.Supply[string(body)] = amount
	case types.NonceKeyPrefix[0]:
		n, err := decodeU64(value)
		if err != nil {
			return fmt.Errorf("nonce %x: %w", key, err)
		}
		s.NonceMax[string(body)] = n
	case types.PubKeyKeyPrefix[0]:
		s.AccountKeys[string(body)] = append([]byte(nil), value...)
	default:
		return fmt.Errorf("unknown state key prefix 0x%02x", key[0])
	}
	return nil
}

// Save writes the full state to db in one synced batch. Records missing from
// s are removed from db.
func (s *State) Save(db dbm.DB) error {
	batch := db.NewBatch()
	defer batch.Close()

	live := make(map[string]struct{})
	set := func(key, value []byte) error {
		live[string(key)] = struct{}{}
		return batch.Set(key, value)
	}

	if err := set(types.HeightKey, encodeU64(uint64(s.Height))); err != nil {
		return err
	}
	if s.Config != nil {
		b, err := json.Marshal(s.Config)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if err := set(types.ConfigKey, b); err != nil {
			return err
		}
	}
	if s.Presale != nil {
		b, err := json.Marshal(s.Presale)
		if err != nil {
			return fmt.Errorf("encode presale: %w", err)
		}
		if err := set(types.PresaleKey, b); err != nil {
			return err
		}
	}
	for id, g := range s.Games {
		b, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encode game %d: %w", id, err)
		}
		if err := set(types.GameKey(id), b); err != nil {
			return err
		}
	}
	for denom, accts := range s.Balances {
		for addr, amount := range accts {
			if err := set(types.BalanceKey(denom, addr), encodeU64(amount)); err != nil {
				return err
			}
		}
	}
	for denom, amount := range s.Supply {
		if err := set(types.SupplyKey(denom), encodeU64(amount)); err != nil {
			return err
		}
	}
	for signer, n := range s.NonceMax {
		if err := set(types.NonceKey(signer), encodeU64(n)); err != nil {
			return err
		}
	}
	for acct, pub := range s.AccountKeys {
		if err := set(types.PubKeyKey(acct), pub); err != nil {
			return err
		}
	}

	stale, err := staleKeys(db, live)
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := batch.Delete(k); err != nil {
			return err
		}
	}

	if err := batch.WriteSync(); err != nil {
		return fmt.Errorf("write state batch: %w", err)
	}
	return nil
}

func staleKeys(db dbm.DB, live map[string]struct{}) ([][]byte, error) {
	it, err := db.Iterator(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open state iterator: %w", err)
	}
	defer it.Close()

	var out [][]byte
	for ; it.Valid(); it.Next() {
		if _, ok := live[string(it.Key())]; !ok {
			out = append(out, append([]byte(nil), it.Key()...))
		}
	}
	return out, it.Error()
}

// prefixEnd returns the smallest key greater than every key starting with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// StoredBalances returns every committed balance of denom keyed by address.
func StoredBalances(db dbm.DB, denom string) (map[string]uint64, error) {
	prefix := types.BalanceKey(denom, "")
	it, err := db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, fmt.Errorf("open balance iterator: %w", err)
	}
	defer it.Close()

	out := map[string]uint64{}
	for ; it.Valid(); it.Next() {
		amount, err := decodeU64(it.Value())
		if err != nil {
			return nil, fmt.Errorf("balance %x: %w", it.Key(), err)
		}
		out[string(it.Key()[len(prefix):])] = amount
	}
	return out, it.Error()
}

func encodeU64(x uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, x)
	return b
}

func decodeU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("want 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
