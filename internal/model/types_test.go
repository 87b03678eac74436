package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestDepthBestPrices(t *testing.T) {
	raw := `{"bids":[["149.50","1.0"],["149.80","0.5"],["150.00","2.0"]],"asks":[["150.50","1.5"],["151.00","3.0"]],"lastUpdateId":"42"}`

	var d Depth
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal depth: %v", err)
	}

	bid, ok := d.BestBid()
	if !ok {
		t.Fatal("BestBid not ok")
	}
	if bid.String() != "150" {
		t.Errorf("BestBid = %s, want 150 (last bid entry)", bid)
	}

	ask, ok := d.BestAsk()
	if !ok {
		t.Fatal("BestAsk not ok")
	}
	if ask.String() != "150.5" {
		t.Errorf("BestAsk = %s, want 150.5 (first ask entry)", ask)
	}
}

func TestDepthEmptyBook(t *testing.T) {
	var d Depth
	if _, ok := d.BestBid(); ok {
		t.Error("BestBid ok on empty book")
	}
	if _, ok := d.BestAsk(); ok {
		t.Error("BestAsk ok on empty book")
	}

	var nilDepth *Depth
	if _, ok := nilDepth.BestBid(); ok {
		t.Error("BestBid ok on nil depth")
	}
}

func TestOrderUnmarshal(t *testing.T) {
	raw := `{
		"id": "abc123",
		"clientId": 1234567,
		"symbol": "SOL_USDC",
		"side": "Bid",
		"orderType": "Limit",
		"timeInForce": "GTC",
		"price": "150.02",
		"quantity": "0.2",
		"executedQuantity": "0",
		"status": "New"
	}`

	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}

	if o.ID != "abc123" {
		t.Errorf("ID = %q", o.ID)
	}
	if o.ClientID == nil || *o.ClientID != 1234567 {
		t.Errorf("ClientID = %v, want 1234567", o.ClientID)
	}
	if o.Side != Bid {
		t.Errorf("Side = %q", o.Side)
	}
	if !o.Price.Equal(mustDecimal(t, "150.02")) {
		t.Errorf("Price = %s", o.Price)
	}
	if o.Status != StatusNew {
		t.Errorf("Status = %q", o.Status)
	}
}

func TestOrderUnmarshalNoClientID(t *testing.T) {
	var o Order
	if err := json.Unmarshal([]byte(`{"id":"x","clientId":null,"side":"Ask"}`), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.ClientID != nil {
		t.Errorf("ClientID = %v, want nil", o.ClientID)
	}
}

func TestSideOpposite(t *testing.T) {
	if Bid.Opposite() != Ask {
		t.Error("Bid.Opposite() != Ask")
	}
	if Ask.Opposite() != Bid {
		t.Error("Ask.Opposite() != Bid")
	}
}

func TestNewClientID(t *testing.T) {
	for _, prefix := range []string{"1", "7", "40"} {
		id := NewClientID(prefix)
		s := strconv.FormatInt(id, 10)
		if !strings.HasPrefix(s, prefix) {
			t.Errorf("NewClientID(%q) = %d, missing prefix", prefix, id)
		}
		if len(s) != len(prefix)+clientIDDigits {
			t.Errorf("NewClientID(%q) = %d, want %d digits after prefix", prefix, id, clientIDDigits)
		}
		if !HasPrefix(id, prefix) {
			t.Errorf("HasPrefix(%d, %q) = false", id, prefix)
		}
	}
}

func TestHasPrefix(t *testing.T) {
	if HasPrefix(2123456, "1") {
		t.Error("HasPrefix matched wrong prefix")
	}
	if HasPrefix(123, "") {
		t.Error("HasPrefix matched empty prefix")
	}
}
