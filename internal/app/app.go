package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"battlesol/internal/codec"
	"battlesol/internal/state"
	"battlesol/internal/types"
)

const (
	AppVersion uint64 = 1
)

type App struct {
	*abci.BaseApplication

	logger log.Logger
	db     dbm.DB
	faucet bool

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
}

type Option func(*App)

// WithFaucet enables the unsigned bank/mint tx for base-denom funds.
func WithFaucet(enabled bool) Option {
	return func(a *App) { a.faucet = enabled }
}

func New(db dbm.DB, logger log.Logger, opts ...Option) (*App, error) {
	if db == nil {
		return nil, fmt.Errorf("app: db is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st, err := state.Load(db)
	if err != nil {
		return nil, err
	}
	a := &App{
		BaseApplication: abci.NewBaseApplication(),
		logger:          logger.With("module", "app"),
		db:              db,
		st:              st,
		lastHash:        st.AppHash(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Info("state loaded", "height", st.Height, "games", len(st.Games), "app_hash", fmt.Sprintf("%X", a.lastHash))
	return a, nil
}

func (a *App) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             types.AppName,
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

func (a *App) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	_, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		codespace, code, logMsg := errorsmod.ABCIInfo(types.ErrInvalidRequest.Wrap(err.Error()), false)
		return &abci.CheckTxResponse{Code: code, Codespace: codespace, Log: logMsg}, nil
	}
	// Only structural validation; auth and state checks run in FinalizeBlock.
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *App) InitChain(_ context.Context, _ *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	// Genesis is empty: config and presale are created by txs.
	return &abci.InitChainResponse{}, nil
}

func (a *App) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height
	nowUnix := req.Time.Unix()

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height, nowUnix)
		txResults = append(txResults, res)
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *App) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.st.Save(a.db); err != nil {
		a.logger.Error("failed to persist state", "height", a.st.Height, "err", err)
		// Returning the error halts the node instead of running on unsaved state.
		return nil, err
	}
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against a staged copy of state. The copy replaces
// the live state only when the handler succeeds.
func (a *App) deliverTx(txBytes []byte, height int64, nowUnix int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(types.ErrInvalidRequest.Wrap(err.Error()))
	}

	staged, err := a.st.Clone()
	if err != nil {
		return errResult(err)
	}

	ctx := txContext{st: staged, env: env, height: height, now: nowUnix}
	res, err := a.route(ctx)
	if err != nil {
		a.logger.Debug("tx failed", "type", env.Type, "height", height, "err", err)
		return errResult(err)
	}
	a.st = staged
	return res
}

// txContext carries the staged state and block info into a handler.
type txContext struct {
	st     *state.State
	env    codec.TxEnvelope
	height int64
	now    int64
}

func (a *App) route(ctx txContext) (*abci.ExecTxResult, error) {
	switch ctx.env.Type {
	case codec.TypeAuthRegisterAccount:
		return a.handleRegisterAccount(ctx)
	case codec.TypeBankMint:
		return a.handleBankMint(ctx)
	case codec.TypeBankSend:
		return a.handleBankSend(ctx)

	case codec.TypeConfigInitialize:
		return a.handleConfigInitialize(ctx)
	case codec.TypeConfigPause:
		return a.handleSetPaused(ctx, true)
	case codec.TypeConfigResume:
		return a.handleSetPaused(ctx, false)

	case codec.TypePresaleInitialize:
		return a.handlePresaleInitialize(ctx)
	case codec.TypePresaleBuy:
		return a.handlePresaleBuy(ctx)
	case codec.TypePresaleDeactivate:
		return a.handlePresaleDeactivate(ctx)

	case codec.TypeGameCreate:
		return a.handleGameCreate(ctx)
	case codec.TypeGameJoin:
		return a.handleGameJoin(ctx)
	case codec.TypeGameFinalize:
		return a.handleGameFinalize(ctx)

	default:
		return nil, types.ErrInvalidRequest.Wrapf("unknown tx type: %s", ctx.env.Type)
	}
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := env.DecodeValue(v); err != nil {
		return types.ErrInvalidRequest.Wrap(err.Error())
	}
	return nil
}

func errResult(err error) *abci.ExecTxResult {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Code: code, Codespace: codespace, Log: logMsg}
}

func okEvent(typ string, attrs map[string]string) *abci.ExecTxResult {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return &abci.ExecTxResult{
		Code:   0,
		Events: []abci.Event{ev},
	}
}
