// Package spam classifies token balances as spam/scam airdrops based on
// name and symbol heuristics. It offers no false-negative guarantee; it
// is a fixed list of known patterns applied uniformly at every ingestion
// point, and callers must not bypass it.
package spam

import "strings"

// spamPatterns are case-insensitive substrings that mark a token name or
// symbol as a phishing or impersonation airdrop. Site fragments (".com",
// ".xyz") catch tokens whose name is a URL pointing at a claim site.
var spamPatterns = []string{
	".com",
	".net",
	".org",
	".xyz",
	".io",
	".site",
	".app",
	"claim",
	"airdrop",
	"reward",
	"gift",
	"voucher",
	"visit ",
	"www.",
	"http",
	"t.me/",
	"safemoon",
	"elonmusk",
	"free ",
	"bonus",
	"$ ",
	"redeem",
}

// IsSpamToken reports whether a token should be excluded as spam based on
// its symbol and optional human-readable name. Matching is pure,
// synchronous, and case-insensitive.
func IsSpamToken(symbol, name string) bool {
	sym := strings.ToLower(symbol)
	nm := strings.ToLower(name)
	for _, p := range spamPatterns {
		if strings.Contains(sym, p) || (nm != "" && strings.Contains(nm, p)) {
			return true
		}
	}
	return false
}
