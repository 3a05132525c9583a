package state

import (
	"fmt"

	"battlesol/internal/commitment"
	"battlesol/internal/types"
)

// DefaultHouseEdgeBps is the protocol fee applied when initialize omits one (2.5%).
const DefaultHouseEdgeBps uint16 = 250

// MaxHouseEdgeBps is 100%.
const MaxHouseEdgeBps uint16 = 10000

// DrawPolicy decides what a drawn game returns to each side.
type DrawPolicy string

const (
	// DrawRefund returns each side its full wager; the fee is computed but not collected.
	DrawRefund DrawPolicy = "refund"
	// DrawSplit returns half of the prize pool to each side; the fee and any odd unit stay in escrow.
	DrawSplit DrawPolicy = "split"
)

func ParseDrawPolicy(s string) (DrawPolicy, error) {
	switch DrawPolicy(s) {
	case "", DrawRefund:
		return DrawRefund, nil
	case DrawSplit:
		return DrawSplit, nil
	default:
		return "", fmt.Errorf("unknown draw policy %q", s)
	}
}

// Config is the ledger-wide singleton.
type Config struct {
	Authority    string     `json:"authority"`
	TotalGames   uint64     `json:"totalGames"`
	TotalVolume  uint64     `json:"totalVolume"`
	HouseEdgeBps uint16     `json:"houseEdgeBps"`
	IsPaused     bool       `json:"isPaused"`
	DrawPolicy   DrawPolicy `json:"drawPolicy"`
}

// Presale is the fixed-price SHIP sale singleton.
type Presale struct {
	Authority string `json:"authority"`
	Mint      string `json:"mint"`
	Vault     string `json:"vault"`
	Price     uint64 `json:"price"`
	MaxSupply uint64 `json:"maxSupply"`
	TotalSold uint64 `json:"totalSold"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	IsActive  bool   `json:"isActive"`
}

type GameState string

const (
	GameWaitingForOpponent GameState = "waitingForOpponent"
	GameInProgress         GameState = "inProgress"
	GameFinished           GameState = "finished"
)

// CanAdvanceTo reports whether next is the single legal successor of s.
func (s GameState) CanAdvanceTo(next GameState) bool {
	switch s {
	case GameWaitingForOpponent:
		return next == GameInProgress
	case GameInProgress:
		return next == GameFinished
	default:
		return false
	}
}

type Winner string

const (
	WinnerCreator  Winner = "creator"
	WinnerOpponent Winner = "opponent"
	WinnerDraw     Winner = "draw"
)

func ParseWinner(s string) (Winner, error) {
	switch Winner(s) {
	case WinnerCreator, WinnerOpponent, WinnerDraw:
		return Winner(s), nil
	default:
		return "", fmt.Errorf("unknown winner %q", s)
	}
}

// Game is one match. Its escrow lives in the ledger under Vault.
type Game struct {
	ID                 uint64             `json:"id"`
	Address            string             `json:"address"`
	Vault              string             `json:"vault"`
	Creator            string             `json:"creator"`
	Opponent           string             `json:"opponent,omitempty"`
	WagerAmount        uint64             `json:"wagerAmount"`
	CreatorCommitment  commitment.Digest  `json:"creatorCommitment"`
	OpponentCommitment *commitment.Digest `json:"opponentCommitment,omitempty"`
	ServerSeed         commitment.Digest  `json:"serverSeed"`
	State              GameState          `json:"state"`
	Winner             Winner             `json:"winner,omitempty"`
	CreatorFleet       commitment.Fleet   `json:"creatorFleet,omitempty"`
	OpponentFleet      commitment.Fleet   `json:"opponentFleet,omitempty"`
	CreatedAt          int64              `json:"createdAt"`
	FinalizedAt        int64              `json:"finalizedAt,omitempty"`
}

func (g *Game) HasOpponent() bool {
	return g != nil && g.Opponent != ""
}

// Advance moves the game to next, rejecting anything but the forward step.
func (g *Game) Advance(next GameState) error {
	if !g.State.CanAdvanceTo(next) {
		return types.ErrInvalidGameState.Wrapf("game %d: cannot move from %q to %q", g.ID, g.State, next)
	}
	g.State = next
	return nil
}
