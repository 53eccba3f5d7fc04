package hyperliquid

// ClearinghouseState is the account summary returned by the info endpoint
// for one user address.
type ClearinghouseState struct {
	MarginSummary  MarginSummary   `json:"marginSummary"`
	Withdrawable   float64         `json:"withdrawable,string"`
	AssetPositions []AssetPosition `json:"assetPositions"`
}

// MarginSummary carries the exchange-reported, liability-aware totals.
type MarginSummary struct {
	AccountValue    float64 `json:"accountValue,string"`
	TotalNtlPos     float64 `json:"totalNtlPos,string"`
	TotalMarginUsed float64 `json:"totalMarginUsed,string"`
}

// AssetPosition wraps one open perp position.
type AssetPosition struct {
	Position PerpPosition `json:"position"`
}

// PerpPosition is one open position. Szi is the signed size: negative
// means short.
type PerpPosition struct {
	Coin          string  `json:"coin"`
	Szi           float64 `json:"szi,string"`
	EntryPx       float64 `json:"entryPx,string"`
	PositionValue float64 `json:"positionValue,string"`
	UnrealizedPnl float64 `json:"unrealizedPnl,string"`
}

// infoRequest is the POST body for the single /info endpoint; the type
// field selects the query.
type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}
