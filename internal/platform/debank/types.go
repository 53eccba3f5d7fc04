package debank

// RawToken is one token balance from the wallet aggregator's token list.
type RawToken struct {
	ID         string  `json:"id"`
	Chain      string  `json:"chain"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Price      float64 `json:"price"`
	IsVerified bool    `json:"is_verified"`
	IsScam     bool    `json:"is_scam"`
	IsCore     bool    `json:"is_core"`
	LogoURL    string  `json:"logo_url"`
}

// RawProtocol is one DeFi protocol the wallet has exposure to, with its
// portfolio items (lending markets, LP positions, vesting schedules...).
type RawProtocol struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Chain         string          `json:"chain"`
	LogoURL       string          `json:"logo_url"`
	PortfolioItem []PortfolioItem `json:"portfolio_item_list"`
}

// PortfolioItem is one sub-position inside a protocol, e.g. a single
// lending market or one vesting schedule.
type PortfolioItem struct {
	Name        string     `json:"name"`
	DetailTypes []string   `json:"detail_types"`
	Detail      ItemDetail `json:"detail"`
}

// ItemDetail carries the token breakdown of a portfolio item.
type ItemDetail struct {
	SupplyTokens []ItemToken `json:"supply_token_list"`
	BorrowTokens []ItemToken `json:"borrow_token_list"`
	RewardTokens []ItemToken `json:"reward_token_list"`
	EndAt        int64       `json:"end_at"` // unlock timestamp for vesting items, 0 otherwise
}

// ItemToken is one token leg of a portfolio item.
type ItemToken struct {
	Chain  string  `json:"chain"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`
}

// apiError is the aggregator's embedded error envelope, returned with
// HTTP 200 on some failures.
type apiError struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
}
