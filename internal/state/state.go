package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cometbft/cometbft/crypto/tmhash"
)

type State struct {
	Height int64 `json:"height"`

	Config  *Config          `json:"config,omitempty"`
	Presale *Presale         `json:"presale,omitempty"`
	Games   map[uint64]*Game `json:"games"`

	Balances    map[string]map[string]uint64 `json:"balances"` // denom -> addr -> amount
	Supply      map[string]uint64            `json:"supply"`   // denom -> minted total
	AccountKeys map[string][]byte            `json:"accountKeys,omitempty"`
	NonceMax    map[string]uint64            `json:"nonceMax,omitempty"` // signer -> last accepted tx.nonce
}

func NewState() *State {
	s := &State{}
	s.normalize()
	return s
}

func (s *State) normalize() {
	if s.Games == nil {
		s.Games = map[uint64]*Game{}
	}
	if s.Balances == nil {
		s.Balances = map[string]map[string]uint64{}
	}
	if s.Supply == nil {
		s.Supply = map[string]uint64{}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

// Game returns the game with id, or nil.
func (s *State) Game(id uint64) *Game {
	return s.Games[id]
}

// GameIDs returns all game ids in ascending order.
func (s *State) GameIDs() []uint64 {
	ids := make([]uint64, 0, len(s.Games))
	for id := range s.Games {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *State) AppHash() []byte {
	// encoding/json does not guarantee map key order for nested maps we care
	// about, so every map is flattened into a sorted slice first.
	type balanceKV struct {
		Denom   string `json:"denom"`
		Addr    string `json:"addr"`
		Balance uint64 `json:"balance"`
	}
	type supplyKV struct {
		Denom  string `json:"denom"`
		Amount uint64 `json:"amount"`
	}
	type accountKeyKV struct {
		Addr   string `json:"addr"`
		PubKey []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}

	balances := make([]balanceKV, 0)
	for denom, accts := range s.Balances {
		for addr, v := range accts {
			balances = append(balances, balanceKV{Denom: denom, Addr: addr, Balance: v})
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Denom != balances[j].Denom {
			return balances[i].Denom < balances[j].Denom
		}
		return balances[i].Addr < balances[j].Addr
	})

	supply := make([]supplyKV, 0, len(s.Supply))
	for d, v := range s.Supply {
		supply = append(supply, supplyKV{Denom: d, Amount: v})
	}
	sort.Slice(supply, func(i, j int) bool { return supply[i].Denom < supply[j].Denom })

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Addr: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Addr < accountKeys[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	games := make([]*Game, 0, len(s.Games))
	for _, id := range s.GameIDs() {
		games = append(games, s.Games[id])
	}

	normalized := struct {
		Height      int64          `json:"height"`
		Config      *Config        `json:"config,omitempty"`
		Presale     *Presale       `json:"presale,omitempty"`
		Games       []*Game        `json:"games"`
		Balances    []balanceKV    `json:"balances"`
		Supply      []supplyKV     `json:"supply"`
		AccountKeys []accountKeyKV `json:"accountKeys,omitempty"`
		NonceMax    []nonceKV      `json:"nonceMax,omitempty"`
	}{
		Height:      s.Height,
		Config:      s.Config,
		Presale:     s.Presale,
		Games:       games,
		Balances:    balances,
		Supply:      supply,
		AccountKeys: accountKeys,
		NonceMax:    nonces,
	}

	b, _ := json.Marshal(normalized)
	return tmhash.Sum(b)
}
