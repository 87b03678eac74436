package stream

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseBookTicker(t *testing.T) {
	raw := `{"stream":"bookTicker.SOL_USDC","data":{"e":"bookTicker","E":1700000000000,"s":"SOL_USDC","a":"150.50","A":"12.0","b":"150.00","B":"8.5","u":991,"T":1700000000001}}`

	quote, ok := parseBookTicker([]byte(raw))
	if !ok {
		t.Fatal("parseBookTicker not ok")
	}
	if quote.Symbol != "SOL_USDC" {
		t.Errorf("Symbol = %q", quote.Symbol)
	}
	if !quote.BestBid.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("BestBid = %s", quote.BestBid)
	}
	if !quote.BestAsk.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("BestAsk = %s", quote.BestAsk)
	}
	if !quote.Mid().Equal(decimal.RequireFromString("150.25")) {
		t.Errorf("Mid = %s", quote.Mid())
	}
	if quote.At.IsZero() {
		t.Error("At not set")
	}
}

func TestParseBookTickerIgnoresOtherMessages(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"subscription ack", `{"id":1,"result":null}`},
		{"other stream", `{"stream":"trade.SOL_USDC","data":{"e":"trade","s":"SOL_USDC","p":"150.10"}}`},
		{"malformed json", `{"stream":`},
		{"bad prices", `{"stream":"bookTicker.SOL_USDC","data":{"e":"bookTicker","s":"SOL_USDC","a":"nan?","b":""}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := parseBookTicker([]byte(tc.raw)); ok {
				t.Errorf("parseBookTicker accepted %s", tc.raw)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{URL: "wss://ws.backpack.exchange", Symbol: "SOL_USDC"}
	cfg.applyDefaults()
	if cfg.ReadTimeout == 0 || cfg.ReconnectBaseDelay == 0 || cfg.ReconnectMaxDelay == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}
