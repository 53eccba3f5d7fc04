package lighter

// OrderBookDetail carries per-market metadata and pricing. IndexPrice is
// the price source of truth for open perp positions.
type OrderBookDetail struct {
	Symbol         string  `json:"symbol"` // base asset, e.g. "ETH"
	MarketID       int     `json:"market_id"`
	IndexPrice     float64 `json:"index_price,string"`
	MarkPrice      float64 `json:"mark_price,string"`
	LastTradePrice float64 `json:"last_trade_price,string"`
}

type orderBookDetailsResponse struct {
	Code             int               `json:"code"`
	Message          string            `json:"message"`
	OrderBookDetails []OrderBookDetail `json:"order_book_details"`
}

// PerpPosition is one open perpetual position on a sub-account. Sign is
// 1 for long, -1 for short; Position is the unsigned size.
type PerpPosition struct {
	MarketID      int     `json:"market_id"`
	Symbol        string  `json:"symbol"` // market symbol, e.g. "ETH-PERP"
	Sign          int     `json:"sign"`
	Position      float64 `json:"position,string"`
	AvgEntryPrice float64 `json:"avg_entry_price,string"`
	PositionValue float64 `json:"position_value,string"`
}

// SpotAsset is one collateral/spot balance on a sub-account.
type SpotAsset struct {
	Symbol  string  `json:"symbol"`
	Balance float64 `json:"balance,string"`
}

// SubAccount is one margin sub-account owned by an L1 address. An address
// may own several.
type SubAccount struct {
	Index           int            `json:"index"`
	AccountType     int            `json:"account_type"`
	TotalAssetValue float64        `json:"total_asset_value,string"`
	Collateral      float64        `json:"collateral,string"`
	Positions       []PerpPosition `json:"positions"`
	Assets          []SpotAsset    `json:"assets"`
}

type accountsResponse struct {
	Code     int          `json:"code"`
	Message  string       `json:"message"`
	Accounts []SubAccount `json:"accounts"`
}
