package model

import (
	"github.com/shopspring/decimal"
)

// Side is the order side as the exchange names it.
type Side string

const (
	Bid Side = "Bid" // buy
	Ask Side = "Ask" // sell
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// OrderStatus is the exchange-reported order state.
type OrderStatus string

const (
	StatusNew           OrderStatus = "New"
	StatusPartiallyFill OrderStatus = "PartiallyFilled"
	StatusFilled        OrderStatus = "Filled"
	StatusCancelled     OrderStatus = "Cancelled"
	StatusPendingNew    OrderStatus = "PendingNew"
	StatusUnknown       OrderStatus = "Unknown"
)

// Order is a resting or historical order as returned by the exchange.
// ClientID is nil for orders placed outside this bot (e.g. manually).
type Order struct {
	ID                    string          `json:"id"`
	ClientID              *int64          `json:"clientId"`
	Symbol                string          `json:"symbol"`
	Side                  Side            `json:"side"`
	OrderType             string          `json:"orderType"`
	TimeInForce           string          `json:"timeInForce"`
	Price                 decimal.Decimal `json:"price"`
	Quantity              decimal.Decimal `json:"quantity"`
	ExecutedQuantity      decimal.Decimal `json:"executedQuantity"`
	ExecutedQuoteQuantity decimal.Decimal `json:"executedQuoteQuantity"`
	Status                OrderStatus     `json:"status"`
	SelfTradePrevention   string          `json:"selfTradePrevention"`
	PostOnly              bool            `json:"postOnly"`
	CreatedAt             int64           `json:"createdAt"`
}

// OrderRequest is a new order submission. Quantity and Price are
// pre-rounded to the configured precision before the request is built.
type OrderRequest struct {
	ClientID    int64
	Symbol      string
	Side        Side
	OrderType   string
	TimeInForce string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
}

// CancelState classifies the outcome of a cancel request.
type CancelState int

const (
	// CancelDone means the exchange confirmed the cancellation.
	CancelDone CancelState = iota
	// CancelPending means the cancel was accepted but not yet executed.
	CancelPending
	// CancelNotFound means the order no longer exists; callers treat this
	// as already cancelled.
	CancelNotFound
)

// CancelOutcome is the result of a cancel request. Order is populated only
// when the exchange returned the cancelled order (state CancelDone).
type CancelOutcome struct {
	OrderID string
	State   CancelState
	Order   *Order
}

// Balance is the per-asset balance from the capital endpoint.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Staked    decimal.Decimal `json:"staked"`
}

// Fill is an executed trade from the fill history endpoint.
type Fill struct {
	TradeID   int64           `json:"tradeId"`
	OrderID   string          `json:"orderId"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Fee       decimal.Decimal `json:"fee"`
	FeeSymbol string          `json:"feeSymbol"`
	IsMaker   bool            `json:"isMaker"`
	Timestamp string          `json:"timestamp"`
}

// Ticker is the 24h ticker for a symbol.
type Ticker struct {
	Symbol             string          `json:"symbol"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	FirstPrice         decimal.Decimal `json:"firstPrice"`
	PriceChange        decimal.Decimal `json:"priceChange"`
	PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
	High               decimal.Decimal `json:"high"`
	Low                decimal.Decimal `json:"low"`
	Volume             decimal.Decimal `json:"volume"`
	QuoteVolume        decimal.Decimal `json:"quoteVolume"`
	Trades             int64           `json:"trades"`
}

// Depth is an order book snapshot. Levels are [price, quantity] pairs of
// string-encoded numbers; bids are sorted ascending, so the best bid is the
// last entry, and the best ask is the first ask entry.
type Depth struct {
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
	LastUpdateID string     `json:"lastUpdateId"`
}

// BestBid returns the highest buy price, or ok=false if the book is empty.
func (d *Depth) BestBid() (decimal.Decimal, bool) {
	if d == nil || len(d.Bids) == 0 || len(d.Bids[len(d.Bids)-1]) < 2 {
		return decimal.Decimal{}, false
	}
	p, err := decimal.NewFromString(d.Bids[len(d.Bids)-1][0])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return p, true
}

// BestAsk returns the lowest sell price, or ok=false if the book is empty.
func (d *Depth) BestAsk() (decimal.Decimal, bool) {
	if d == nil || len(d.Asks) == 0 || len(d.Asks[0]) < 2 {
		return decimal.Decimal{}, false
	}
	p, err := decimal.NewFromString(d.Asks[0][0])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return p, true
}

// SystemStatus is the exchange operational status.
type SystemStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Operational reports whether the exchange is accepting orders.
func (s *SystemStatus) Operational() bool {
	return s != nil && s.Status == "Ok"
}

// Asset describes a tradeable asset and its supported chains.
type Asset struct {
	Symbol string       `json:"symbol"`
	Tokens []AssetToken `json:"tokens"`
}

// AssetToken is a chain-specific representation of an asset.
type AssetToken struct {
	Blockchain        string          `json:"blockchain"`
	DepositEnabled    bool            `json:"depositEnabled"`
	WithdrawEnabled   bool            `json:"withdrawEnabled"`
	MinimumWithdrawal decimal.Decimal `json:"minimumWithdrawal"`
	WithdrawalFee     decimal.Decimal `json:"withdrawalFee"`
}

// Market describes a trading pair and its filters.
type Market struct {
	Symbol      string `json:"symbol"`
	BaseSymbol  string `json:"baseSymbol"`
	QuoteSymbol string `json:"quoteSymbol"`
}

// Kline is a single candle.
type Kline struct {
	Start  string          `json:"start"`
	End    string          `json:"end"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
	Trades string          `json:"trades"`
}

// PublicTrade is an entry from the recent/historical trades endpoints.
type PublicTrade struct {
	ID            int64           `json:"id"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	QuoteQuantity decimal.Decimal `json:"quoteQuantity"`
	Timestamp     int64           `json:"timestamp"`
	IsBuyerMaker  bool            `json:"isBuyerMaker"`
}
