package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    Family
	}{
		{"evm lowercase", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", FamilyEVM},
		{"evm checksummed", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", FamilyEVM},
		{"solana", "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", FamilySolana},
		{"too short", "0x1234", FamilyUnsupported},
		{"solana with ambiguous chars", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", FamilyUnsupported},
		{"empty", "", FamilyUnsupported},
		{"garbage", "not-an-address", FamilyUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.address))
		})
	}
}

func TestChecksum(t *testing.T) {
	// Vitalik's address in EIP-55 form.
	got := Checksum("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", got)

	// Checksumming is idempotent.
	assert.Equal(t, got, Checksum(got))
}
