package ethereal

// Subaccount is one trading sub-account owned by an address.
type Subaccount struct {
	ID      string `json:"id"`
	Account string `json:"account"`
	Name    string `json:"name"`
}

// Product is one listed perp market with its index pricing.
type Product struct {
	ID         string  `json:"id"`
	Ticker     string  `json:"ticker"` // e.g. "BTCUSD"
	BaseAsset  string  `json:"baseTokenName"`
	IndexPrice float64 `json:"indexPrice,string"`
	MarkPrice  float64 `json:"markPrice,string"`
}

// PerpPosition is one open position on a sub-account. Size is signed:
// negative means short.
type PerpPosition struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"productId"`
	Ticker     string  `json:"ticker"`
	Size       float64 `json:"size,string"`
	EntryPrice float64 `json:"entryPrice,string"`
	Notional   float64 `json:"notional,string"`
}

// Balance is one collateral token balance on a sub-account. The exchange
// sometimes reports open positions with no balance records at all; the
// provider estimates margin in that case.
type Balance struct {
	TokenName string  `json:"tokenName"`
	Amount    float64 `json:"amount,string"`
}

// listEnvelope is the API's standard list response wrapper.
type listEnvelope[T any] struct {
	Data    []T    `json:"data"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
