package demo

import (
	"testing"

	"folioscope/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletTokensDeterministic(t *testing.T) {
	const address = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

	a := WalletTokens(address)
	b := WalletTokens(address)
	assert.Equal(t, a, b, "same address must yield identical output")

	other := WalletTokens("0x0000000000000000000000000000000000000001")
	assert.NotEqual(t, a[0].Amount, other[0].Amount, "different addresses should differ")
}

func TestDefiPositionsDeterministic(t *testing.T) {
	const address = "0xABC0000000000000000000000000000000000abc"
	assert.Equal(t, DefiPositions(address), DefiPositions(address))
}

func TestPerpResultShape(t *testing.T) {
	res := PerpResult(domain.PerpLighter, "0xabc", "acct-1")
	require.Len(t, res.Positions, 3)

	var long, short *domain.Position
	for i := range res.Positions {
		switch res.Positions[i].Symbol {
		case "ETH":
			long = &res.Positions[i]
		case "BTC":
			short = &res.Positions[i]
		}
	}
	require.NotNil(t, long)
	require.NotNil(t, short)
	assert.False(t, long.IsDebt)
	assert.True(t, short.IsDebt)
	assert.NotEqual(t, long.ID, short.ID)
	assert.Positive(t, res.AccountValue)

	for _, p := range res.Positions {
		assert.Equal(t, "acct-1", p.AccountID, "synthetic positions carry the account attribution")
	}
}
