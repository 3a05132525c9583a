package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"battlesol/internal/state"
	"battlesol/internal/types"
)

// AccountBalance is one denom's balance as returned by /account/<addr>.
type AccountBalance struct {
	Denom   string `json:"denom"`
	Amount  uint64 `json:"amount"`
	Display string `json:"display"`
}

// DisplayAmount renders base units with ShipDecimals of precision.
func DisplayAmount(amount uint64) string {
	return sdkmath.LegacyNewDecFromIntWithPrec(sdkmath.NewIntFromUint64(amount), types.ShipDecimals).String()
}

func (a *App) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Paths:
	// - /config
	// - /presale
	// - /games
	// - /game/<id>
	// - /account/<addr>
	// - /address/<namespace>[/<id>]
	// - /holders/<denom> (last committed block)
	path := strings.TrimSpace(req.Path)
	switch {
	case path == "/config":
		if a.st.Config == nil {
			return a.queryErr(types.ErrNotInitialized.Wrap("config")), nil
		}
		return a.queryOK(a.st.Config), nil
	case path == "/presale":
		if a.st.Presale == nil {
			return a.queryErr(types.ErrNotInitialized.Wrap("presale")), nil
		}
		return a.queryOK(a.st.Presale), nil
	case path == "/games":
		return a.queryOK(a.st.GameIDs()), nil
	case strings.HasPrefix(path, "/game/"):
		raw := strings.TrimPrefix(path, "/game/")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return a.queryErr(types.ErrInvalidRequest.Wrapf("invalid game id %q", raw)), nil
		}
		g := a.st.Game(id)
		if g == nil {
			return a.queryErr(types.ErrGameNotFound.Wrapf("game %d", id)), nil
		}
		return a.queryOK(g), nil
	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		out := make([]AccountBalance, 0, 2)
		for _, denom := range []string{types.BaseDenom, types.ShipDenom} {
			amt := a.st.Balance(denom, addr)
			out = append(out, AccountBalance{Denom: denom, Amount: amt, Display: DisplayAmount(amt)})
		}
		return a.queryOK(map[string]any{"addr": addr, "balances": out}), nil
	case strings.HasPrefix(path, "/address/"):
		ns, rawID, _ := strings.Cut(strings.TrimPrefix(path, "/address/"), "/")
		addr, err := types.NamespaceAddress(ns, rawID)
		if err != nil {
			return a.queryErr(err), nil
		}
		return a.queryOK(map[string]string{"address": addr}), nil
	case strings.HasPrefix(path, "/holders/"):
		denom, err := normalizeDenom(strings.TrimPrefix(path, "/holders/"))
		if err != nil {
			return a.queryErr(err), nil
		}
		holders, err := state.StoredBalances(a.db, denom)
		if err != nil {
			return a.queryErr(err), nil
		}
		return a.queryOK(holders), nil
	default:
		return a.queryErr(types.ErrInvalidRequest.Wrapf("unknown query path %q", path)), nil
	}
}

func (a *App) queryOK(v any) *abci.QueryResponse {
	b, err := json.Marshal(v)
	if err != nil {
		return a.queryErr(err)
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}
}

func (a *App) queryErr(err error) *abci.QueryResponse {
	res := errResult(err)
	return &abci.QueryResponse{Code: res.Code, Codespace: res.Codespace, Log: res.Log, Height: a.st.Height}
}
