package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"battlesol/internal/commitment"
)

// TxEnvelope is the transaction container. CometBFT txs are opaque bytes; we
// carry JSON.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Auth:
	// - Nonce: decimal u64, must strictly increase per signer.
	// - Signer: account id of the signer.
	// - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// NonceValue parses the envelope nonce.
func (env TxEnvelope) NonceValue() (uint64, error) {
	n, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tx.nonce %q", env.Nonce)
	}
	return n, nil
}

// DecodeValue unmarshals the envelope payload into v.
func (env TxEnvelope) DecodeValue(v any) error {
	if len(env.Value) == 0 {
		return fmt.Errorf("missing %s value", env.Type)
	}
	if err := json.Unmarshal(env.Value, v); err != nil {
		return fmt.Errorf("bad %s value: %w", env.Type, err)
	}
	return nil
}

// Tx types.
const (
	TypeAuthRegisterAccount = "auth/register_account"
	TypeBankMint            = "bank/mint"
	TypeBankSend            = "bank/send"

	TypeConfigInitialize = "config/initialize"
	TypeConfigPause      = "config/pause_games"
	TypeConfigResume     = "config/resume_games"

	TypePresaleInitialize = "presale/initialize"
	TypePresaleBuy        = "presale/buy"
	TypePresaleDeactivate = "presale/deactivate"

	TypeGameCreate   = "game/create"
	TypeGameJoin     = "game/join"
	TypeGameFinalize = "game/reveal_and_finalize"
)

// ---- Auth ----

type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Bank ----

type BankMintTx struct {
	To     string `json:"to"`
	Denom  string `json:"denom,omitempty"` // default lamport
	Amount uint64 `json:"amount"`
}

type BankSendTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Denom  string `json:"denom,omitempty"` // default lamport
	Amount uint64 `json:"amount"`
}

// ---- Config ----

type ConfigInitializeTx struct {
	Authority    string  `json:"authority"`
	HouseEdgeBps *uint16 `json:"houseEdgeBps,omitempty"` // default 250
	DrawPolicy   string  `json:"drawPolicy,omitempty"`   // refund|split, default refund
}

// ConfigCallerTx is the payload of pause/resume and presale deactivation.
type ConfigCallerTx struct {
	Caller string `json:"caller"`
}

// ---- Presale ----

type PresaleInitializeTx struct {
	Authority string `json:"authority"`
	Price     uint64 `json:"price"` // lamports per token unit
	MaxSupply uint64 `json:"maxSupply"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

type PresaleBuyTx struct {
	Buyer  string `json:"buyer"`
	Amount uint64 `json:"amount"`
}

// ---- Game ----

type GameCreateTx struct {
	Creator           string            `json:"creator"`
	WagerAmount       uint64            `json:"wagerAmount"`
	CreatorCommitment commitment.Digest `json:"creatorCommitment"`
}

type GameJoinTx struct {
	Opponent           string            `json:"opponent"`
	GameID             uint64            `json:"gameId"`
	OpponentCommitment commitment.Digest `json:"opponentCommitment"`
}

type GameFinalizeTx struct {
	Caller        string           `json:"caller"`
	GameID        uint64           `json:"gameId"`
	CreatorFleet  commitment.Fleet `json:"creatorFleet"`
	CreatorNonce  uint64           `json:"creatorNonce"`
	OpponentFleet commitment.Fleet `json:"opponentFleet"`
	OpponentNonce uint64           `json:"opponentNonce"`
	Winner        string           `json:"winner"` // creator|opponent|draw
}
