// Package addr classifies and normalizes account addresses across the
// chain families the aggregator supports.
package addr

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Family is the address family an account address belongs to.
type Family int

const (
	FamilyUnsupported Family = iota
	FamilyEVM
	FamilySolana
)

// Solana addresses are base58, 32-44 chars, excluding the visually
// ambiguous characters 0, O, I and l.
var solanaRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// Classify partitions an address by shape: hex-prefixed EVM style,
// base58 Solana style, or unsupported.
func Classify(address string) Family {
	s := strings.TrimSpace(address)
	switch {
	case common.IsHexAddress(s):
		return FamilyEVM
	case solanaRe.MatchString(s):
		return FamilySolana
	default:
		return FamilyUnsupported
	}
}

// Checksum returns the EIP-55 checksummed form of an EVM address.
// Exchange APIs match addresses case-sensitively server-side, so every
// lower- or mixed-case input must pass through here before a call.
func Checksum(address string) string {
	return common.HexToAddress(address).Hex()
}

// IsEVM reports whether the address is a valid hex EVM address.
func IsEVM(address string) bool {
	return common.IsHexAddress(strings.TrimSpace(address))
}

// IsSolana reports whether the address looks like a Solana public key.
func IsSolana(address string) bool {
	return solanaRe.MatchString(strings.TrimSpace(address))
}
