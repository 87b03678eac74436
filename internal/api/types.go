package api

import "github.com/shopspring/decimal"

// Deposit is an entry from the deposit history endpoint.
type Deposit struct {
	ID            int64           `json:"id"`
	ToAddress     string          `json:"toAddress"`
	FromAddress   string          `json:"fromAddress"`
	Source        string          `json:"source"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transactionHash"`
	Symbol        string          `json:"symbol"`
	Quantity      decimal.Decimal `json:"quantity"`
	CreatedAt     string          `json:"createdAt"`
}

// DepositAddress is a chain-specific deposit address.
type DepositAddress struct {
	Address string `json:"address"`
}

// Withdrawal is an entry from the withdrawal history endpoint.
type Withdrawal struct {
	ID             int64           `json:"id"`
	Blockchain     string          `json:"blockchain"`
	ClientID       *string         `json:"clientId"`
	Status         string          `json:"status"`
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	Fee            decimal.Decimal `json:"fee"`
	ToAddress      string          `json:"toAddress"`
	TransactionID  string          `json:"transactionHash"`
	CreatedAt      string          `json:"createdAt"`
	IsInternal     bool            `json:"isInternal"`
	ProviderStatus string          `json:"providerStatus"`
}
