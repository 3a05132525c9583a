package app

import (
	"encoding/binary"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/tmhash"

	"battlesol/internal/arith"
	"battlesol/internal/codec"
	"battlesol/internal/commitment"
	"battlesol/internal/state"
	"battlesol/internal/types"
)

// serverSeed mixes block time, height, creator and game id. It is recorded on
// the game for clients and never feeds settlement.
func serverSeed(now, height int64, creator string, gameID uint64) commitment.Digest {
	buf := make([]byte, 0, 8+8+len(creator)+8)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(now))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(height))
	buf = append(buf, creator...)
	buf = binary.LittleEndian.AppendUint64(buf, gameID)

	var d commitment.Digest
	copy(d[:], tmhash.Sum(buf))
	return d
}

func (a *App) handleGameCreate(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.GameCreateTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	cfg := ctx.st.Config
	if cfg == nil {
		return nil, types.ErrNotInitialized.Wrap("config")
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Creator); err != nil {
		return nil, err
	}
	if cfg.IsPaused {
		return nil, types.ErrGamesPaused
	}
	if msg.WagerAmount == 0 {
		return nil, types.ErrInvalidWager.Wrap("wager must be positive")
	}
	if msg.CreatorCommitment.IsZero() {
		return nil, types.ErrInvalidCommitment.Wrap("missing creator commitment")
	}

	id := cfg.TotalGames
	next, err := arith.Add(cfg.TotalGames, 1, "total games")
	if err != nil {
		return nil, err
	}
	if _, exists := ctx.st.Games[id]; exists {
		return nil, types.ErrInvalidGameState.Wrapf("game %d already exists", id)
	}

	g := &state.Game{
		ID:                id,
		Address:           types.GameAddress(id),
		Vault:             types.GameVaultAddress(id),
		Creator:           msg.Creator,
		WagerAmount:       msg.WagerAmount,
		CreatorCommitment: msg.CreatorCommitment,
		ServerSeed:        serverSeed(ctx.now, ctx.height, msg.Creator, id),
		State:             state.GameWaitingForOpponent,
		CreatedAt:         ctx.now,
	}
	if err := ctx.st.Transfer(types.ShipDenom, msg.Creator, g.Vault, msg.WagerAmount); err != nil {
		return nil, err
	}
	ctx.st.Games[id] = g
	cfg.TotalGames = next

	a.logger.Info("game created", "game_id", id, "creator", msg.Creator, "wager", msg.WagerAmount)
	return okEvent(types.EventTypeGameCreated, map[string]string{
		types.AttributeKeyGameID:      fmt.Sprintf("%d", id),
		types.AttributeKeyPlayer:      msg.Creator,
		types.AttributeKeyWagerAmount: fmt.Sprintf("%d", msg.WagerAmount),
	}), nil
}

func (a *App) handleGameJoin(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.GameJoinTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	g := ctx.st.Game(msg.GameID)
	if g == nil {
		return nil, types.ErrGameNotFound.Wrapf("game %d", msg.GameID)
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Opponent); err != nil {
		return nil, err
	}
	if g.State != state.GameWaitingForOpponent {
		return nil, types.ErrInvalidGameState.Wrapf("game %d is %s", g.ID, g.State)
	}
	if msg.Opponent == g.Creator {
		return nil, types.ErrCannotPlaySelf
	}
	if msg.OpponentCommitment.IsZero() {
		return nil, types.ErrInvalidCommitment.Wrap("missing opponent commitment")
	}

	if err := ctx.st.Transfer(types.ShipDenom, msg.Opponent, g.Vault, g.WagerAmount); err != nil {
		return nil, err
	}
	oc := msg.OpponentCommitment
	g.Opponent = msg.Opponent
	g.OpponentCommitment = &oc
	if err := g.Advance(state.GameInProgress); err != nil {
		return nil, err
	}

	a.logger.Info("game joined", "game_id", g.ID, "opponent", msg.Opponent)
	return okEvent(types.EventTypeGameJoined, map[string]string{
		types.AttributeKeyGameID:   fmt.Sprintf("%d", g.ID),
		types.AttributeKeyOpponent: msg.Opponent,
	}), nil
}

// settlement is the fee split of a finished game.
type settlement struct {
	Total uint64
	Fee   uint64
	Prize uint64
}

func computeSettlement(wager uint64, houseEdgeBps uint16) (settlement, error) {
	total, err := arith.Mul(wager, 2, "total wager")
	if err != nil {
		return settlement{}, err
	}
	fee, err := arith.BpsOf(total, uint64(houseEdgeBps), "house fee")
	if err != nil {
		return settlement{}, err
	}
	prize, err := arith.Sub(total, fee, "prize pool")
	if err != nil {
		return settlement{}, err
	}
	return settlement{Total: total, Fee: fee, Prize: prize}, nil
}

func (a *App) handleGameFinalize(ctx txContext) (*abci.ExecTxResult, error) {
	var msg codec.GameFinalizeTx
	if err := decodeValue(ctx.env, &msg); err != nil {
		return nil, err
	}
	cfg := ctx.st.Config
	if cfg == nil {
		return nil, types.ErrNotInitialized.Wrap("config")
	}
	g := ctx.st.Game(msg.GameID)
	if g == nil {
		return nil, types.ErrGameNotFound.Wrapf("game %d", msg.GameID)
	}
	if g.State != state.GameInProgress {
		return nil, types.ErrInvalidGameState.Wrapf("game %d is %s", g.ID, g.State)
	}
	if msg.Caller != g.Creator && msg.Caller != g.Opponent {
		return nil, types.ErrNotParticipant.Wrapf("%q in game %d", msg.Caller, g.ID)
	}
	if err := requireAccountAuth(ctx.st, ctx.env, msg.Caller); err != nil {
		return nil, err
	}
	winner, err := state.ParseWinner(msg.Winner)
	if err != nil {
		return nil, types.ErrInvalidRequest.Wrap(err.Error())
	}

	if err := commitment.Verify(msg.CreatorFleet, msg.CreatorNonce, g.CreatorCommitment); err != nil {
		return nil, errorsmod.Wrap(err, "creator fleet")
	}
	if g.OpponentCommitment != nil {
		if err := commitment.Verify(msg.OpponentFleet, msg.OpponentNonce, *g.OpponentCommitment); err != nil {
			return nil, errorsmod.Wrap(err, "opponent fleet")
		}
	}

	s, err := computeSettlement(g.WagerAmount, cfg.HouseEdgeBps)
	if err != nil {
		return nil, err
	}
	if bal := ctx.st.Balance(types.ShipDenom, g.Vault); bal != s.Total {
		return nil, types.ErrEscrowMismatch.Wrapf("game %d vault holds %d, want %d", g.ID, bal, s.Total)
	}

	if err := payout(ctx.st, g, winner, s, cfg.DrawPolicy); err != nil {
		return nil, err
	}

	if err := g.Advance(state.GameFinished); err != nil {
		return nil, err
	}
	g.Winner = winner
	g.CreatorFleet = msg.CreatorFleet.Clone()
	if g.HasOpponent() {
		g.OpponentFleet = msg.OpponentFleet.Clone()
	}
	g.FinalizedAt = ctx.now

	a.logger.Info("game finalized", "game_id", g.ID, "winner", winner, "prize_pool", s.Prize, "house_fee", s.Fee,
		"creator_cells", g.CreatorFleet.CellCount(), "opponent_cells", g.OpponentFleet.CellCount())
	return okEvent(types.EventTypeGameFinalized, map[string]string{
		types.AttributeKeyGameID:    fmt.Sprintf("%d", g.ID),
		types.AttributeKeyWinner:    string(winner),
		types.AttributeKeyPrizePool: fmt.Sprintf("%d", s.Prize),
		types.AttributeKeyHouseFee:  fmt.Sprintf("%d", s.Fee),
	}), nil
}

// payout moves funds out of the game vault. The house fee stays in the vault.
func payout(st *state.State, g *state.Game, winner state.Winner, s settlement, policy state.DrawPolicy) error {
	switch winner {
	case state.WinnerCreator:
		return st.Transfer(types.ShipDenom, g.Vault, g.Creator, s.Prize)
	case state.WinnerOpponent:
		if !g.HasOpponent() {
			return types.ErrInvalidGameState.Wrapf("game %d has no opponent to pay", g.ID)
		}
		return st.Transfer(types.ShipDenom, g.Vault, g.Opponent, s.Prize)
	case state.WinnerDraw:
		share := g.WagerAmount
		if policy == state.DrawSplit {
			share = s.Prize / 2
		}
		if err := st.Transfer(types.ShipDenom, g.Vault, g.Creator, share); err != nil {
			return err
		}
		if g.HasOpponent() {
			return st.Transfer(types.ShipDenom, g.Vault, g.Opponent, share)
		}
		return nil
	default:
		return types.ErrInvalidRequest.Wrapf("unknown winner %q", winner)
	}
}
