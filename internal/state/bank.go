package state

import (
	"battlesol/internal/arith"
	"battlesol/internal/types"
)

// ---- Bank ----
//
// The ledger is the fund-transfer gateway every handler goes through. Each
// method either applies fully or leaves balances untouched.

func (s *State) Balance(denom, addr string) uint64 {
	return s.Balances[denom][addr]
}

func (s *State) setBalance(denom, addr string, amount uint64) {
	accts := s.Balances[denom]
	if accts == nil {
		accts = map[string]uint64{}
		s.Balances[denom] = accts
	}
	accts[addr] = amount
}

func (s *State) Credit(denom, addr string, amount uint64) error {
	next, err := arith.Add(s.Balance(denom, addr), amount, denom+" balance of "+addr)
	if err != nil {
		return err
	}
	s.setBalance(denom, addr, next)
	return nil
}

func (s *State) Debit(denom, addr string, amount uint64) error {
	bal := s.Balance(denom, addr)
	if bal < amount {
		return types.ErrInsufficientFunds.Wrapf("%s: have=%d need=%d %s", addr, bal, amount, denom)
	}
	s.setBalance(denom, addr, bal-amount)
	return nil
}

// Transfer moves amount of denom from one account to another.
func (s *State) Transfer(denom, from, to string, amount uint64) error {
	if from == to {
		if s.Balance(denom, from) < amount {
			return types.ErrInsufficientFunds.Wrapf("%s: have=%d need=%d %s", from, s.Balance(denom, from), amount, denom)
		}
		return nil
	}
	// Check the credit side first so a failing credit never leaves a debit behind.
	if _, err := arith.Add(s.Balance(denom, to), amount, denom+" balance of "+to); err != nil {
		return err
	}
	if err := s.Debit(denom, from, amount); err != nil {
		return err
	}
	return s.Credit(denom, to, amount)
}

// Mint creates amount of denom in the to account and grows the supply.
func (s *State) Mint(denom, to string, amount uint64) error {
	supply, err := arith.Add(s.Supply[denom], amount, denom+" supply")
	if err != nil {
		return err
	}
	if _, err := arith.Add(s.Balance(denom, to), amount, denom+" balance of "+to); err != nil {
		return err
	}
	s.Supply[denom] = supply
	return s.Credit(denom, to, amount)
}
