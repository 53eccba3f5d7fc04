package spam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSpamToken(t *testing.T) {
	tests := []struct {
		symbol string
		name   string
		want   bool
	}{
		{"SAFEMOON", "", true},
		{"AIRDROP123", "", true},
		{"USDC", "Visit usdc-claim.xyz to redeem", true},
		{"ABC", "Claim your reward", true},
		{"XYZ", "www.phishing-site.com", true},
		{"ETH", "Ethereum", false},
		{"WBTC", "Wrapped Bitcoin", false},
		{"USDT", "Tether USD", false},
		{"SOL", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSpamToken(tt.symbol, tt.name))
		})
	}
}

func TestIsSpamTokenCaseInsensitive(t *testing.T) {
	assert.True(t, IsSpamToken("SafeMoon", ""))
	assert.True(t, IsSpamToken("sAfEmOoN", ""))
	assert.True(t, IsSpamToken("TOKEN", "AIRDROP inside"))
}
