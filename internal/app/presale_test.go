package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"battlesol/internal/types"
)

func setupPresale(t *testing.T, price, maxSupply uint64, start, end int64) *App {
	t.Helper()
	a := newTestApp(t)
	registerTestAccount(t, a, testAuthority)
	registerTestAccount(t, a, "alice")
	initPresale(t, a, price, maxSupply, start, end)
	mintLamports(t, a, "alice", 1_000_000)
	return a
}

func buyTx(t *testing.T, amount uint64) []byte {
	t.Helper()
	return txBytesSigned(t, "presale/buy", map[string]any{"buyer": "alice", "amount": amount}, "alice")
}

func TestPresale_BuyMintsAndCollects(t *testing.T) {
	a := setupPresale(t, 3, 100, testNow-10, testNow+10)

	res := mustOk(t, a.deliverTx(buyTx(t, 40), 2, testNow))
	ev := findEvent(res.Events, types.EventTypeTokensPurchased)
	require.Equal(t, "alice", attr(ev, types.AttributeKeyBuyer))
	require.Equal(t, "40", attr(ev, types.AttributeKeyAmount))
	require.Equal(t, "120", attr(ev, types.AttributeKeyTotalCost))

	require.Equal(t, uint64(40), ship(a, "alice"))
	require.Equal(t, uint64(1_000_000-120), a.st.Balance(types.BaseDenom, "alice"))
	require.Equal(t, uint64(120), a.st.Balance(types.BaseDenom, types.PresaleVaultAddress()))
	require.Equal(t, uint64(40), a.st.Presale.TotalSold)
	require.Equal(t, uint64(40), a.st.Supply[types.ShipDenom])
}

func TestPresale_WindowIsInclusive(t *testing.T) {
	a := setupPresale(t, 1, 100, testNow, testNow+10)
	mustOk(t, a.deliverTx(buyTx(t, 1), 2, testNow))
	mustOk(t, a.deliverTx(buyTx(t, 1), 2, testNow+10))
	require.Equal(t, uint64(2), a.st.Presale.TotalSold)
}

func TestPresale_RejectsOutsideWindow(t *testing.T) {
	a := setupPresale(t, 1, 100, testNow, testNow+10)

	requireCode(t, a.deliverTx(buyTx(t, 1), 2, testNow-1), types.ErrPresaleNotStarted)
	requireCode(t, a.deliverTx(buyTx(t, 1), 2, testNow+11), types.ErrPresaleEnded)

	require.Zero(t, a.st.Presale.TotalSold)
	require.Zero(t, ship(a, "alice"))
	require.Equal(t, uint64(1_000_000), a.st.Balance(types.BaseDenom, "alice"))
}

func TestPresale_CapIsEnforced(t *testing.T) {
	a := setupPresale(t, 1, 100, 0, testNow*2)

	mustOk(t, a.deliverTx(buyTx(t, 60), 2, testNow))
	requireCode(t, a.deliverTx(buyTx(t, 41), 2, testNow), types.ErrExceedsMaxSupply)
	require.Equal(t, uint64(60), a.st.Presale.TotalSold)

	// Buying up to the cap exactly is allowed.
	mustOk(t, a.deliverTx(buyTx(t, 40), 2, testNow))
	require.Equal(t, uint64(100), a.st.Presale.TotalSold)
	requireCode(t, a.deliverTx(buyTx(t, 1), 2, testNow), types.ErrExceedsMaxSupply)
}

func TestPresale_RejectsZeroAmount(t *testing.T) {
	a := setupPresale(t, 1, 100, 0, testNow*2)
	requireCode(t, a.deliverTx(buyTx(t, 0), 2, testNow), types.ErrInvalidRequest)
}

func TestPresale_DeactivateStopsSales(t *testing.T) {
	a := setupPresale(t, 1, 100, 0, testNow*2)
	mustOk(t, a.deliverTx(buyTx(t, 5), 2, testNow))

	res := a.deliverTx(txBytesSigned(t, "presale/deactivate", map[string]any{"caller": "alice"}, "alice"), 2, testNow)
	requireCode(t, res, types.ErrUnauthorized)

	res = mustOk(t, a.deliverTx(txBytesSigned(t, "presale/deactivate", map[string]any{"caller": testAuthority}, testAuthority), 2, testNow))
	require.NotNil(t, findEvent(res.Events, types.EventTypePresaleDeactivated))
	require.False(t, a.st.Presale.IsActive)

	requireCode(t, a.deliverTx(buyTx(t, 1), 2, testNow), types.ErrPresaleNotActive)
	require.Equal(t, uint64(5), a.st.Presale.TotalSold)
}

func TestPresale_InitializeValidation(t *testing.T) {
	a := newTestApp(t)
	registerTestAccount(t, a, testAuthority)

	initTx := func(price, maxSupply uint64, start, end int64) []byte {
		return txBytesSigned(t, "presale/initialize", map[string]any{
			"authority": testAuthority,
			"price":     price,
			"maxSupply": maxSupply,
			"startTime": start,
			"endTime":   end,
		}, testAuthority)
	}

	requireCode(t, a.deliverTx(initTx(0, 10, 0, 1), 1, testNow), types.ErrInvalidRequest)
	requireCode(t, a.deliverTx(initTx(1, 0, 0, 1), 1, testNow), types.ErrInvalidRequest)
	requireCode(t, a.deliverTx(initTx(1, 10, 2, 1), 1, testNow), types.ErrInvalidRequest)
	require.Nil(t, a.st.Presale)

	mustOk(t, a.deliverTx(initTx(1, 10, 0, 1), 1, testNow))
	require.Equal(t, types.ShipDenom, a.st.Presale.Mint)
	require.Equal(t, types.PresaleVaultAddress(), a.st.Presale.Vault)
	require.True(t, a.st.Presale.IsActive)

	requireCode(t, a.deliverTx(initTx(2, 20, 0, 1), 1, testNow), types.ErrAlreadyInit)
	require.Equal(t, uint64(1), a.st.Presale.Price)
}

func TestPresale_BuyBeforeInitialize(t *testing.T) {
	a := newTestApp(t)
	registerTestAccount(t, a, "alice")
	requireCode(t, a.deliverTx(buyTx(t, 1), 2, testNow), types.ErrNotInitialized)
}
