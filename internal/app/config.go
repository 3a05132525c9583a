package app

import (
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"

	"battlesol/internal/codec"
	"battlesol/internal/state"
	"battlesol/internal/types"
)

func (a *App) handleConfigInitialize(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.ConfigInitializeTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	if ctx.st.Config != nil {
		return nil, types.ErrAlreadyInit.Wrap("config")
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Authority); err != nil {
		return nil, err
	}

	edge := state.DefaultHouseEdgeBps
	if msg.HouseEdgeBps != nil {
		edge = *msg.HouseEdgeBps
	}
	if edge > state.MaxHouseEdgeBps {
		return nil, types.ErrInvalidRequest.Wrapf("houseEdgeBps %d exceeds %d", edge, state.MaxHouseEdgeBps)
	}
	policy, err := state.ParseDrawPolicy(msg.DrawPolicy)
	if err != nil {
		return nil, types.ErrInvalidRequest.Wrap(err.Error())
	}

	ctx.st.Config = &state.Config{
		Authority:    msg.Authority,
		HouseEdgeBps: edge,
		DrawPolicy:   policy,
	}
	a.logger.Info("config initialized", "authority", msg.Authority, "house_edge_bps", edge, "draw_policy", policy)
	return okEvent(types.EventTypeConfigInitialized, map[string]string{
		types.AttributeKeyAuthority: msg.Authority,
		types.AttributeKeyAddress:   types.ConfigAddress(),
		"houseEdgeBps":              fmt.Sprintf("%d", edge),
		"drawPolicy":                string(policy),
	}), nil
}

// handleSetPaused toggles IsPaused. Pausing blocks game creation only.
func (a *App) handleSetPaused(ctx txContext, paused bool) (*abci.ExecTxResult, error) {
	var msg codec.ConfigCallerTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	cfg := ctx.st.Config
	if cfg == nil {
		return nil, types.ErrNotInitialized.Wrap("config")
	}
	if msg.Caller != cfg.Authority {
		return nil, types.ErrUnauthorized.Wrapf("%q is not the config authority", msg.Caller)
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Caller); err != nil {
		return nil, err
	}
	cfg.IsPaused = paused

	evType := types.EventTypeGamesResumed
	if paused {
		evType = types.EventTypeGamesPaused
	}
	a.logger.Info("games pause toggled", "paused", paused, "height", ctx.height)
	return okEvent(evType, map[string]string{
		types.AttributeKeyAuthority: cfg.Authority,
	}), nil
}
