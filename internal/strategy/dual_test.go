package strategy

import (
	"errors"
	"testing"

	"github.com/rickgao/bpx-grid/internal/model"
)

func newDualUnderTest(ex *fakeExchange, md *fakeMarket) *DualOrder {
	return NewDualOrder(testParams(), ex, md, nil, quietLogger())
}

func operationalMarket(bid, ask string) *fakeMarket {
	return &fakeMarket{
		status: &model.SystemStatus{Status: "Ok"},
		depth:  testDepth(bid, ask),
	}
}

func TestDualPlacesBothSides(t *testing.T) {
	ex := &fakeExchange{
		balances: map[string]model.Balance{
			"SOL":  {Available: d("10")},
			"USDC": {Available: d("10000")},
		},
	}
	dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

	if err := dual.cycle(t.Context()); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	if len(ex.executed) != 2 {
		t.Fatalf("executed %d orders, want 2", len(ex.executed))
	}

	buy := ex.executed[0]
	if buy.Side != model.Bid {
		t.Errorf("first order side = %s, want Bid", buy.Side)
	}
	if !buy.Price.Equal(d("150.02")) {
		t.Errorf("buy price = %s, want 150.02", buy.Price)
	}
	if !buy.Quantity.Equal(d("0.2")) {
		t.Errorf("buy quantity = %s, want 0.2", buy.Quantity)
	}
	if !model.HasPrefix(buy.ClientID, "112") {
		t.Errorf("buy client id %d does not carry prefix", buy.ClientID)
	}

	sell := ex.executed[1]
	if sell.Side != model.Ask {
		t.Errorf("second order side = %s, want Ask", sell.Side)
	}
	if !sell.Price.Equal(d("150.48")) {
		t.Errorf("sell price = %s, want 150.48", sell.Price)
	}

	if dual.buyOrder == nil || dual.sellOrder == nil {
		t.Error("both slots should be tracking orders")
	}
}

func TestDualFlipsToBuyWhenBaseShort(t *testing.T) {
	ex := &fakeExchange{
		balances: map[string]model.Balance{
			"SOL":  {Available: d("0.1")}, // below the 0.2 order size
			"USDC": {Available: d("60.26")},
		},
	}
	dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

	err := dual.place(t.Context(), model.Ask, d("150.48"), d("150.00"), d("150.50"))
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if len(ex.executed) != 1 {
		t.Fatalf("executed %d orders, want 1", len(ex.executed))
	}
	req := ex.executed[0]
	if req.Side != model.Bid {
		t.Errorf("side = %s, want flipped Bid", req.Side)
	}
	// ask * (1 + gap) = 150.50 * 1.001 rounded to 2 places
	if !req.Price.Equal(d("150.65")) {
		t.Errorf("price = %s, want 150.65", req.Price)
	}
	// half the quote balance at the flip price: 60.26 / (2 * 150.65)
	if !req.Quantity.Equal(d("0.2")) {
		t.Errorf("quantity = %s, want 0.2", req.Quantity)
	}
	// The flipped order occupies the slot that triggered placement.
	if dual.sellOrder == nil {
		t.Error("sell slot should hold the flipped order")
	}
}

func TestDualFlipsToSellWhenQuoteShort(t *testing.T) {
	ex := &fakeExchange{
		balances: map[string]model.Balance{
			"SOL":  {Available: d("0.5")},
			"USDC": {Available: d("10")}, // below 0.2 * 150.02
		},
	}
	dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

	err := dual.place(t.Context(), model.Bid, d("150.02"), d("150.00"), d("150.50"))
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if len(ex.executed) != 1 {
		t.Fatalf("executed %d orders, want 1", len(ex.executed))
	}
	req := ex.executed[0]
	if req.Side != model.Ask {
		t.Errorf("side = %s, want flipped Ask", req.Side)
	}
	// bid * (1 - gap) = 150.00 * 0.999 rounded to 2 places
	if !req.Price.Equal(d("149.85")) {
		t.Errorf("price = %s, want 149.85", req.Price)
	}
	if !req.Quantity.Equal(d("0.25")) {
		t.Errorf("quantity = %s, want half the base balance 0.25", req.Quantity)
	}
}

func TestDualRejectsPriceOutsideBand(t *testing.T) {
	for _, tc := range []struct {
		name  string
		price string
	}{
		{"above max", "250.00"},
		{"below min", "120.00"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ex := &fakeExchange{
				balances: map[string]model.Balance{
					"SOL":  {Available: d("10")},
					"USDC": {Available: d("10000")},
				},
			}
			dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

			err := dual.place(t.Context(), model.Bid, d(tc.price), d("150.00"), d("150.50"))
			if err != nil {
				t.Fatalf("place: %v", err)
			}
			if len(ex.executed) != 0 {
				t.Errorf("executed %d orders, want none", len(ex.executed))
			}
			if dual.buyOrder != nil {
				t.Error("buy slot should stay empty")
			}
		})
	}
}

func TestDualAdoptsRestingOrderInsteadOfPlacing(t *testing.T) {
	resting := model.Order{
		ID:       "prior-1",
		ClientID: cid(112123456),
		Symbol:   "SOL_USDC",
		Side:     model.Bid,
		Price:    d("150.00"),
		Quantity: d("0.2"),
		Status:   model.StatusNew,
	}
	ex := &fakeExchange{
		open: []model.Order{resting},
		balances: map[string]model.Balance{
			"SOL":  {Available: d("10")},
			"USDC": {Available: d("10000")},
		},
	}
	dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

	err := dual.place(t.Context(), model.Bid, d("150.02"), d("150.00"), d("150.50"))
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if len(ex.executed) != 0 {
		t.Fatalf("executed %d orders, want adoption instead", len(ex.executed))
	}
	if dual.buyOrder == nil || dual.buyOrder.ID != "prior-1" {
		t.Errorf("buy slot = %+v, want adopted prior-1", dual.buyOrder)
	}
}

func TestDualFillResolution(t *testing.T) {
	tracked := model.Order{
		ID:       "o-1",
		ClientID: cid(112987654),
		Symbol:   "SOL_USDC",
		Side:     model.Bid,
		Price:    d("150.02"),
		Quantity: d("0.2"),
		Status:   model.StatusNew,
	}

	tests := []struct {
		name      string
		history   []model.Order
		wantEmpty bool
	}{
		{
			name:      "no history record keeps order tracked",
			history:   nil,
			wantEmpty: false,
		},
		{
			name: "filled in history frees the slot",
			history: []model.Order{
				{ID: "o-1", Status: model.StatusFilled, Side: model.Bid, Price: d("150.02"), Quantity: d("0.2")},
			},
			wantEmpty: true,
		},
		{
			name: "cancelled in history frees the slot",
			history: []model.Order{
				{ID: "o-1", Status: model.StatusCancelled, Side: model.Bid, Price: d("150.02"), Quantity: d("0.2")},
			},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExchange{history: tt.history} // order absent from open book
			dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))
			o := tracked
			dual.buyOrder = &o

			if err := dual.refreshSide(t.Context(), model.Bid); err != nil {
				t.Fatalf("refreshSide: %v", err)
			}
			if empty := dual.buyOrder == nil; empty != tt.wantEmpty {
				t.Errorf("slot empty = %v, want %v", empty, tt.wantEmpty)
			}
		})
	}
}

func TestDualFillRecordsToJournal(t *testing.T) {
	ex := &fakeExchange{
		history: []model.Order{
			{ID: "o-1", Status: model.StatusFilled, Side: model.Bid, Price: d("150.02"), Quantity: d("0.2")},
		},
	}
	rec := &fakeRecorder{}
	dual := NewDualOrder(testParams(), ex, operationalMarket("150.00", "150.50"), rec, quietLogger())
	dual.buyOrder = &model.Order{ID: "o-1", Side: model.Bid, Price: d("150.02"), Quantity: d("0.2")}

	if err := dual.refreshSide(t.Context(), model.Bid); err != nil {
		t.Fatalf("refreshSide: %v", err)
	}

	if len(rec.fills) != 1 {
		t.Fatalf("recorded %d fills, want 1", len(rec.fills))
	}
	if rec.fills[0].orderID != "o-1" {
		t.Errorf("fill order id = %s", rec.fills[0].orderID)
	}
	if !rec.fills[0].fillPrice.Equal(d("150.02")) {
		t.Errorf("fill price = %s, want order price 150.02", rec.fills[0].fillPrice)
	}
}

func TestDualReconcileAdoptsOnePerSide(t *testing.T) {
	ex := &fakeExchange{
		open: []model.Order{
			{ID: "b-1", ClientID: cid(112111111), Side: model.Bid, Price: d("150.00")},
			{ID: "s-1", ClientID: cid(112222222), Side: model.Ask, Price: d("150.50")},
			{ID: "foreign", ClientID: cid(999333333), Side: model.Bid, Price: d("140.00")},
			{ID: "manual", ClientID: nil, Side: model.Ask, Price: d("160.00")},
		},
	}
	params := testParams()
	params.StrictTagging = true
	dual := NewDualOrder(params, ex, operationalMarket("150.00", "150.50"), nil, quietLogger())

	if err := dual.reconcile(t.Context()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if dual.buyOrder == nil || dual.buyOrder.ID != "b-1" {
		t.Errorf("buy slot = %+v, want b-1", dual.buyOrder)
	}
	if dual.sellOrder == nil || dual.sellOrder.ID != "s-1" {
		t.Errorf("sell slot = %+v, want s-1", dual.sellOrder)
	}
	if len(ex.cancelled) != 0 {
		t.Errorf("cancelled %v, want none", ex.cancelled)
	}
}

func TestDualReconcileAdoptsUntaggedByDefault(t *testing.T) {
	ex := &fakeExchange{
		open: []model.Order{
			{ID: "manual", ClientID: nil, Side: model.Ask, Price: d("160.00")},
		},
	}
	dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

	if err := dual.reconcile(t.Context()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if dual.sellOrder == nil || dual.sellOrder.ID != "manual" {
		t.Errorf("sell slot = %+v, want adopted manual order", dual.sellOrder)
	}
}

func TestDualReconcileCancelsDuplicateSide(t *testing.T) {
	ex := &fakeExchange{
		open: []model.Order{
			{ID: "b-1", ClientID: cid(112111111), Side: model.Bid, Price: d("150.00")},
			{ID: "b-2", ClientID: cid(112222222), Side: model.Bid, Price: d("149.00")},
			{ID: "s-1", ClientID: cid(112333333), Side: model.Ask, Price: d("150.50")},
		},
	}
	dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

	if err := dual.reconcile(t.Context()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(ex.cancelled) != 2 {
		t.Fatalf("cancelled %v, want the two duplicate bids", ex.cancelled)
	}
	if dual.buyOrder != nil {
		t.Errorf("buy slot = %+v, want empty after duplicate cleanup", dual.buyOrder)
	}
	if dual.sellOrder == nil || dual.sellOrder.ID != "s-1" {
		t.Errorf("sell slot = %+v, want s-1", dual.sellOrder)
	}
}

func TestDualSkipsCycleOnMarketDataFailure(t *testing.T) {
	ex := &fakeExchange{}
	md := &fakeMarket{
		status:   &model.SystemStatus{Status: "Ok"},
		depthErr: errors.New("timeout"),
	}
	dual := newDualUnderTest(ex, md)

	if err := dual.cycle(t.Context()); err != nil {
		t.Fatalf("cycle should skip on depth failure, got %v", err)
	}
	if len(ex.executed) != 0 {
		t.Errorf("executed %d orders during skipped cycle", len(ex.executed))
	}
}

func TestDualSkipsCycleDuringMaintenance(t *testing.T) {
	ex := &fakeExchange{}
	md := &fakeMarket{
		status: &model.SystemStatus{Status: "Maintenance", Message: "scheduled"},
		depth:  testDepth("150.00", "150.50"),
	}
	dual := newDualUnderTest(ex, md)

	if err := dual.cycle(t.Context()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(ex.executed) != 0 {
		t.Errorf("executed %d orders during maintenance", len(ex.executed))
	}
}

func TestDualAbortsOnOrderPathFailure(t *testing.T) {
	ex := &fakeExchange{
		executeErr: errors.New("submit retries exhausted"),
		balances: map[string]model.Balance{
			"SOL":  {Available: d("10")},
			"USDC": {Available: d("10000")},
		},
	}
	dual := newDualUnderTest(ex, operationalMarket("150.00", "150.50"))

	if err := dual.cycle(t.Context()); err == nil {
		t.Fatal("cycle should abort when order placement fails")
	}
}
