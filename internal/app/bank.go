package app

import (
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"

	"battlesol/internal/codec"
	"battlesol/internal/types"
)

func normalizeDenom(denom string) (string, error) {
	switch denom {
	case "", types.BaseDenom:
		return types.BaseDenom, nil
	case types.ShipDenom:
		return types.ShipDenom, nil
	default:
		return "", types.ErrInvalidRequest.Wrapf("unknown denom %q", denom)
	}
}

// handleBankMint is the devnet faucet. SHIP is only ever minted by the presale.
func (a *App) handleBankMint(ctx txContext) (*abci.ExecTxResult, error) {
	if !a.faucet {
		return nil, types.ErrUnauthorized.Wrap("faucet is disabled")
	}
	var msg codec.BankMintTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	if msg.To == "" || msg.Amount == 0 {
		return nil, types.ErrInvalidRequest.Wrap("missing to/amount")
	}
	denom, err := normalizeDenom(msg.Denom)
	if err != nil {
		return nil, err
	}
	if denom == types.ShipDenom {
		return nil, types.ErrUnauthorized.Wrapf("%s can only be minted by the presale", types.ShipDenom)
	}
	if types.IsDerivedAddress(msg.To) {
		return nil, types.ErrUnauthorized.Wrapf("cannot mint into derived address %s", msg.To)
	}
	if err := ctx.st.Mint(denom, msg.To, msg.Amount); err != nil {
		return nil, err
	}
	return okEvent(types.EventTypeBankMinted, map[string]string{
		types.AttributeKeyTo:     msg.To,
		types.AttributeKeyDenom:  denom,
		types.AttributeKeyAmount: fmt.Sprintf("%d", msg.Amount),
	}), nil
}

func (a *App) handleBankSend(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.BankSendTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	if msg.From == "" || msg.To == "" || msg.Amount == 0 {
		return nil, types.ErrInvalidRequest.Wrap("missing from/to/amount")
	}
	denom, err := normalizeDenom(msg.Denom)
	if err != nil {
		return nil, err
	}
	// Vault balances are only moved by the handlers that own them.
	if types.IsDerivedAddress(msg.From) || types.IsDerivedAddress(msg.To) {
		return nil, types.ErrUnauthorized.Wrap("derived addresses cannot send or receive transfers")
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.From); err != nil {
		return nil, err
	}
	if err := ctx.st.Transfer(denom, msg.From, msg.To, msg.Amount); err != nil {
		return nil, err
	}
	return okEvent(types.EventTypeBankSent, map[string]string{
		types.AttributeKeyFrom:   msg.From,
		types.AttributeKeyTo:     msg.To,
		types.AttributeKeyDenom:  denom,
		types.AttributeKeyAmount: fmt.Sprintf("%d", msg.Amount),
	}), nil
}
