package app

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	"battlesol/internal/commitment"
	"battlesol/internal/types"
)

const (
	testAuthority = "authority"
	testNow       = int64(1_700_000_000)
)

var testNonce atomic.Uint64

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func txBytes(t *testing.T, typ string, value any) []byte {
	t.Helper()
	return mustMarshal(t, map[string]any{
		"type":  typ,
		"value": value,
	})
}

func testEd25519Key(id string) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := sha256.Sum256([]byte("battlesol-test-key:" + id))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

func signedTx(t *testing.T, typ string, value any, signer string, nonce uint64) []byte {
	t.Helper()
	valueBytes := mustMarshal(t, value)
	nonceStr := strconv.FormatUint(nonce, 10)
	_, priv := testEd25519Key(signer)
	sig := ed25519.Sign(priv, txAuthSignBytesV1(typ, valueBytes, nonceStr, signer))
	return mustMarshal(t, map[string]any{
		"type":   typ,
		"value":  json.RawMessage(valueBytes),
		"nonce":  nonceStr,
		"signer": signer,
		"sig":    sig,
	})
}

func txBytesSigned(t *testing.T, typ string, value any, signer string) []byte {
	t.Helper()
	return signedTx(t, typ, value, signer, testNonce.Add(1))
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func timeUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithFaucet(true)}, opts...)
	a, err := New(dbm.NewMemDB(), log.NewNopLogger(), opts...)
	require.NoError(t, err)
	return a
}

func mustOk(t *testing.T, res *abci.ExecTxResult) *abci.ExecTxResult {
	t.Helper()
	require.Zero(t, res.Code, "expected ok, got code=%d log=%q", res.Code, res.Log)
	return res
}

// requireCode asserts res failed with the ABCI code of err.
func requireCode(t *testing.T, res *abci.ExecTxResult, err *errorsmod.Error) {
	t.Helper()
	require.Equal(t, err.ABCICode(), res.Code, "log=%q", res.Log)
	require.Equal(t, types.Codespace, res.Codespace)
}

func registerTestAccount(t *testing.T, a *App, id string) {
	t.Helper()
	pub, _ := testEd25519Key(id)
	mustOk(t, a.deliverTx(txBytesSigned(t, "auth/register_account", map[string]any{
		"account": id,
		"pubKey":  []byte(pub),
	}, id), 1, testNow))
}

func mintLamports(t *testing.T, a *App, to string, amount uint64) {
	t.Helper()
	mustOk(t, a.deliverTx(txBytes(t, "bank/mint", map[string]any{"to": to, "amount": amount}), 1, testNow))
}

func initConfig(t *testing.T, a *App, value map[string]any) {
	t.Helper()
	if value == nil {
		value = map[string]any{}
	}
	value["authority"] = testAuthority
	mustOk(t, a.deliverTx(txBytesSigned(t, "config/initialize", value, testAuthority), 1, testNow))
}

func initPresale(t *testing.T, a *App, price, maxSupply uint64, start, end int64) {
	t.Helper()
	mustOk(t, a.deliverTx(txBytesSigned(t, "presale/initialize", map[string]any{
		"authority": testAuthority,
		"price":     price,
		"maxSupply": maxSupply,
		"startTime": start,
		"endTime":   end,
	}, testAuthority), 1, testNow))
}

// buyShips funds player with lamports and buys amount SHIP at the open presale.
func buyShips(t *testing.T, a *App, player string, amount uint64) {
	t.Helper()
	mintLamports(t, a, player, amount*a.st.Presale.Price)
	mustOk(t, a.deliverTx(txBytesSigned(t, "presale/buy", map[string]any{
		"buyer":  player,
		"amount": amount,
	}, player), 1, testNow))
}

// setupPlayers creates a ledger with config, an open 1:1 presale and two
// registered players holding 5000 SHIP each.
func setupPlayers(t *testing.T, cfg map[string]any) *App {
	t.Helper()
	a := newTestApp(t)
	registerTestAccount(t, a, testAuthority)
	registerTestAccount(t, a, "alice")
	registerTestAccount(t, a, "bob")
	initConfig(t, a, cfg)
	initPresale(t, a, 1, 1_000_000, 0, testNow*2)
	buyShips(t, a, "alice", 5000)
	buyShips(t, a, "bob", 5000)
	return a
}

var (
	aliceFleet = commitment.Fleet{
		{ShipID: 1, Cells: []commitment.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}},
		{ShipID: 2, Cells: []commitment.Cell{{Row: 4, Col: 4}, {Row: 5, Col: 4}, {Row: 6, Col: 4}}},
	}
	bobFleet = commitment.Fleet{
		{ShipID: 1, Cells: []commitment.Cell{{Row: 9, Col: 9}, {Row: 9, Col: 8}}},
	}
)

const (
	aliceNonce = uint64(42)
	bobNonce   = uint64(7)
)

func mustCommit(t *testing.T, fleet commitment.Fleet, nonce uint64) commitment.Digest {
	t.Helper()
	d, err := commitment.Commit(fleet, nonce)
	require.NoError(t, err)
	return d
}

func createGame(t *testing.T, a *App, creator string, wager uint64) uint64 {
	t.Helper()
	res := mustOk(t, a.deliverTx(txBytesSigned(t, "game/create", map[string]any{
		"creator":           creator,
		"wagerAmount":       wager,
		"creatorCommitment": mustCommit(t, aliceFleet, aliceNonce),
	}, creator), 2, testNow))
	id, err := strconv.ParseUint(attr(findEvent(res.Events, types.EventTypeGameCreated), types.AttributeKeyGameID), 10, 64)
	require.NoError(t, err)
	return id
}

func joinGame(t *testing.T, a *App, opponent string, gameID uint64) *abci.ExecTxResult {
	t.Helper()
	return a.deliverTx(txBytesSigned(t, "game/join", map[string]any{
		"opponent":           opponent,
		"gameId":             gameID,
		"opponentCommitment": mustCommit(t, bobFleet, bobNonce),
	}, opponent), 3, testNow)
}

func finalizeTx(t *testing.T, caller string, gameID uint64, winner string, creatorNonce uint64) []byte {
	t.Helper()
	return txBytesSigned(t, "game/reveal_and_finalize", map[string]any{
		"caller":        caller,
		"gameId":        gameID,
		"creatorFleet":  aliceFleet,
		"creatorNonce":  creatorNonce,
		"opponentFleet": bobFleet,
		"opponentNonce": bobNonce,
		"winner":        winner,
	}, caller)
}

func ship(a *App, addr string) uint64 {
	return a.st.Balance(types.ShipDenom, addr)
}

func TestInfo_ReportsHeightAndHash(t *testing.T) {
	a := newTestApp(t)
	res, err := a.Info(t.Context(), &abci.InfoRequest{})
	require.NoError(t, err)
	require.Equal(t, types.AppName, res.Data)
	require.Equal(t, a.st.AppHash(), res.LastBlockAppHash)
}

func TestCheckTx_RejectsMalformed(t *testing.T) {
	a := newTestApp(t)
	res, err := a.CheckTx(t.Context(), &abci.CheckTxRequest{Tx: []byte("{")})
	require.NoError(t, err)
	require.Equal(t, types.ErrInvalidRequest.ABCICode(), res.Code)

	res, err = a.CheckTx(t.Context(), &abci.CheckTxRequest{Tx: txBytes(t, "bank/mint", map[string]any{})})
	require.NoError(t, err)
	require.Zero(t, res.Code)
}

func TestDeliverTx_UnknownType(t *testing.T) {
	a := newTestApp(t)
	res := a.deliverTx(txBytes(t, "poker/sit", map[string]any{}), 1, testNow)
	requireCode(t, res, types.ErrInvalidRequest)
	require.Contains(t, res.Log, "unknown tx type")
}

func TestCommit_PersistsAcrossRestart(t *testing.T) {
	db := dbm.NewMemDB()
	a, err := New(db, log.NewNopLogger(), WithFaucet(true))
	require.NoError(t, err)

	_, err = a.FinalizeBlock(t.Context(), &abci.FinalizeBlockRequest{
		Height: 1,
		Txs:    [][]byte{txBytes(t, "bank/mint", map[string]any{"to": "alice", "amount": 10})},
	})
	require.NoError(t, err)
	_, err = a.Commit(t.Context(), &abci.CommitRequest{})
	require.NoError(t, err)

	b, err := New(db, log.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, a.lastHash, b.lastHash)
	require.Equal(t, int64(1), b.st.Height)
	require.Equal(t, uint64(10), b.st.Balance(types.BaseDenom, "alice"))
}

func TestFinalizeBlock_UsesBlockTime(t *testing.T) {
	a := newTestApp(t)
	registerTestAccount(t, a, testAuthority)
	registerTestAccount(t, a, "alice")
	initPresale(t, a, 1, 100, testNow+100, testNow+200)
	mintLamports(t, a, "alice", 10)

	buy := func(height int64, unix int64) *abci.ExecTxResult {
		res, err := a.FinalizeBlock(t.Context(), &abci.FinalizeBlockRequest{
			Height: height,
			Time:   timeUnix(unix),
			Txs: [][]byte{txBytesSigned(t, "presale/buy", map[string]any{
				"buyer":  "alice",
				"amount": 1,
			}, "alice")},
		})
		require.NoError(t, err)
		require.Len(t, res.TxResults, 1)
		require.Equal(t, a.lastHash, res.AppHash)
		return res.TxResults[0]
	}

	requireCode(t, buy(2, testNow), types.ErrPresaleNotStarted)
	mustOk(t, buy(3, testNow+150))
	require.Equal(t, int64(3), a.st.Height)
}
