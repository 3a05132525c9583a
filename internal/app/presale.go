package app

import (
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"

	"battlesol/internal/arith"
	"battlesol/internal/codec"
	"battlesol/internal/state"
	"battlesol/internal/types"
)

// handlePresaleInitialize opens the SHIP sale. The signer becomes the presale authority.
func (a *App) handlePresaleInitialize(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.PresaleInitializeTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	if ctx.st.Presale != nil {
		return nil, types.ErrAlreadyInit.Wrap("presale")
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Authority); err != nil {
		return nil, err
	}
	if msg.Price == 0 || msg.MaxSupply == 0 {
		return nil, types.ErrInvalidRequest.Wrap("price and maxSupply must be positive")
	}
	if msg.StartTime > msg.EndTime {
		return nil, types.ErrInvalidRequest.Wrapf("startTime %d after endTime %d", msg.StartTime, msg.EndTime)
	}

	ctx.st.Presale = &state.Presale{
		Authority: msg.Authority,
		Mint:      types.ShipDenom,
		Vault:     types.PresaleVaultAddress(),
		Price:     msg.Price,
		MaxSupply: msg.MaxSupply,
		StartTime: msg.StartTime,
		EndTime:   msg.EndTime,
		IsActive:  true,
	}
	a.logger.Info("presale initialized", "authority", msg.Authority, "price", msg.Price, "max_supply", msg.MaxSupply)
	return okEvent(types.EventTypePresaleInitialized, map[string]string{
		types.AttributeKeyAuthority: msg.Authority,
		types.AttributeKeyAddress:   types.PresaleAddress(),
		types.AttributeKeyVault:     ctx.st.Presale.Vault,
		"price":                     fmt.Sprintf("%d", msg.Price),
		"maxSupply":                 fmt.Sprintf("%d", msg.MaxSupply),
		"startTime":                 fmt.Sprintf("%d", msg.StartTime),
		"endTime":                   fmt.Sprintf("%d", msg.EndTime),
	}), nil
}

func (a *App) handlePresaleBuy(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.PresaleBuyTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	p := ctx.st.Presale
	if p == nil {
		return nil, types.ErrNotInitialized.Wrap("presale")
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Buyer); err != nil {
		return nil, err
	}

	if !p.IsActive {
		return nil, types.ErrPresaleNotActive
	}
	if ctx.now < p.StartTime {
		return nil, types.ErrPresaleNotStarted.Wrapf("now=%d start=%d", ctx.now, p.StartTime)
	}
	if ctx.now > p.EndTime {
		return nil, types.ErrPresaleEnded.Wrapf("now=%d end=%d", ctx.now, p.EndTime)
	}
	sold, err := arith.Add(p.TotalSold, msg.Amount, "presale total sold")
	if err != nil {
		return nil, err
	}
	if sold > p.MaxSupply {
		return nil, types.ErrExceedsMaxSupply.Wrapf("sold=%d amount=%d max=%d", p.TotalSold, msg.Amount, p.MaxSupply)
	}
	if msg.Amount == 0 {
		return nil, types.ErrInvalidRequest.Wrap("amount must be positive")
	}
	cost, err := arith.Mul(msg.Amount, p.Price, "presale total cost")
	if err != nil {
		return nil, err
	}

	if err := ctx.st.Transfer(types.BaseDenom, msg.Buyer, p.Vault, cost); err != nil {
		return nil, err
	}
	if err := ctx.st.Mint(p.Mint, msg.Buyer, msg.Amount); err != nil {
		return nil, err
	}
	p.TotalSold = sold

	a.logger.Info("ship tokens purchased", "buyer", msg.Buyer, "amount", msg.Amount, "cost", cost)
	return okEvent(types.EventTypeTokensPurchased, map[string]string{
		types.AttributeKeyBuyer:     msg.Buyer,
		types.AttributeKeyAmount:    fmt.Sprintf("%d", msg.Amount),
		types.AttributeKeyTotalCost: fmt.Sprintf("%d", cost),
	}), nil
}

func (a *App) handlePresaleDeactivate(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.ConfigCallerTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	p := ctx.st.Presale
	if p == nil {
		return nil, types.ErrNotInitialized.Wrap("presale")
	}
	if msg.Caller != p.Authority {
		return nil, types.ErrUnauthorized.Wrapf("%q is not the presale authority", msg.Caller)
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Caller); err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, types.ErrPresaleNotActive
	}
	p.IsActive = false
	a.logger.Info("presale deactivated", "total_sold", p.TotalSold)
	return okEvent(types.EventTypePresaleDeactivated, map[string]string{
		types.AttributeKeyAuthority: p.Authority,
		types.AttributeKeyAmount:    fmt.Sprintf("%d", p.TotalSold),
	}), nil
}
