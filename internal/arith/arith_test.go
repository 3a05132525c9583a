package arith

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"battlesol/internal/types"
)

func TestAdd(t *testing.T) {
	got, err := Add(40, 2, "sum")
	require.NoError(t, err)
	require.Equal(t, uint64(42), got)

	got, err = Add(math.MaxUint64-1, 1, "sum")
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), got)

	_, err = Add(math.MaxUint64, 1, "sum")
	require.ErrorIs(t, err, types.ErrMathOverflow)
	require.ErrorContains(t, err, "sum overflows uint64")
}

func TestSub(t *testing.T) {
	got, err := Sub(10, 10, "diff")
	require.NoError(t, err)
	require.Zero(t, got)

	_, err = Sub(0, 1, "diff")
	require.ErrorIs(t, err, types.ErrMathOverflow)
}

func TestMul(t *testing.T) {
	cases := []struct {
		a, b    uint64
		want    uint64
		wantErr bool
	}{
		{a: 0, b: math.MaxUint64, want: 0},
		{a: 1000, b: 2, want: 2000},
		{a: math.MaxUint64 / 2, b: 2, want: math.MaxUint64 - 1},
		{a: math.MaxUint64/2 + 1, b: 2, wantErr: true},
		{a: 1 << 32, b: 1 << 32, wantErr: true},
	}
	for _, tc := range cases {
		got, err := Mul(tc.a, tc.b, "product")
		if tc.wantErr {
			require.ErrorIs(t, err, types.ErrMathOverflow, "%d*%d", tc.a, tc.b)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}

func TestDiv_ZeroDivisor(t *testing.T) {
	_, err := Div(1, 0, "quotient")
	require.ErrorIs(t, err, types.ErrMathOverflow)

	got, err := Div(2050, 10000, "quotient")
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestBpsOf(t *testing.T) {
	fee, err := BpsOf(2000, 250, "fee")
	require.NoError(t, err)
	require.Equal(t, uint64(50), fee)

	fee, err = BpsOf(39, 250, "fee")
	require.NoError(t, err)
	require.Equal(t, uint64(0), fee, "floor division")

	fee, err = BpsOf(12345, 10000, "fee")
	require.NoError(t, err)
	require.Equal(t, uint64(12345), fee)

	_, err = BpsOf(math.MaxUint64/100, 250, "fee")
	require.ErrorIs(t, err, types.ErrMathOverflow)
}
