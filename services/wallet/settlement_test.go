package wallet

import (
	"testing"
	"time"

	"opeec/models"
)

func testOrder() *models.Order {
	start := time.Now().Add(24 * time.Hour)
	return &models.Order{
		ID:              42,
		SellerID:        7,
		RenterID:        9,
		RentalFee:       200,
		PlatformFee:     20,
		TaxAmount:       12,
		InsuranceAmount: 15,
		DepositAmount:   100,
		TotalAmount:     347,
		RentalStartDate: start,
		RentalEndDate:   start.Add(72 * time.Hour),
	}
}

func TestValidateOrderForSettlement(t *testing.T) {
	if v := ValidateOrderForSettlement(testOrder()); !v.IsValid {
		t.Fatalf("valid order rejected: %s", v.Reason)
	}

	noFee := testOrder()
	noFee.RentalFee = 0
	if v := ValidateOrderForSettlement(noFee); v.IsValid {
		t.Error("order with zero rental fee must be ineligible")
	}

	noTotal := testOrder()
	noTotal.TotalAmount = 0
	if v := ValidateOrderForSettlement(noTotal); v.IsValid {
		t.Error("order with zero total must be ineligible")
	}

	if v := ValidateOrderForSettlement(nil); v.IsValid {
		t.Error("nil order must be ineligible")
	}
}

func TestDetermineSettlement_Completed(t *testing.T) {
	order := testOrder()
	res, err := DetermineSettlement(order, EventCompleted)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("entries: got %d, want 1", len(res.Transactions))
	}
	e := res.Transactions[0]
	if e.Type != models.TxOrderEarning || e.Amount != 200 {
		t.Errorf("got %s %v, want ORDER_EARNING +200", e.Type, e.Amount)
	}
	if res.SellerEarning != 200 {
		t.Errorf("seller earning: got %v, want 200 (platform fee never enters the seller ledger)", res.SellerEarning)
	}
	if e.Metadata == nil || e.Metadata.OrderBreakdown == nil {
		t.Fatal("entry must carry order breakdown metadata")
	}
	if e.Metadata.OrderBreakdown.RentalFee != 200 || e.Metadata.OrderBreakdown.DepositAmount != 100 {
		t.Errorf("breakdown snapshot mismatch: %+v", e.Metadata.OrderBreakdown)
	}
}

// Pure function: repeated calls with the same order yield identical entries.
func TestDetermineSettlement_Deterministic(t *testing.T) {
	order := testOrder()
	for i := 0; i < 3; i++ {
		res, err := DetermineSettlement(order, EventCompleted)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(res.Transactions) != 1 || res.Transactions[0].Amount != 200 {
			t.Fatalf("call %d: got %+v", i, res.Transactions)
		}
	}
}

func TestDetermineSettlement_CancelledBeforeCutoff(t *testing.T) {
	res, err := DetermineSettlement(testOrder(), EventCancelledBeforeCutoff)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	if res.SellerEarning != 0 {
		t.Errorf("seller earning: got %v, want 0", res.SellerEarning)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("entries: got %d, want 1", len(res.Transactions))
	}
	e := res.Transactions[0]
	if e.Type != models.TxRefund || e.Amount != -200 {
		t.Errorf("got %s %v, want REFUND -200", e.Type, e.Amount)
	}
}

func TestDetermineSettlement_CancelledAfterCutoff(t *testing.T) {
	// Late cancellation: the seller keeps the full fee while the renter
	// refund (deposit + insurance) costs the seller nothing.
	res, err := DetermineSettlement(testOrder(), EventCancelledAfterCutoff)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	if res.SellerEarning != 200 {
		t.Errorf("seller earning: got %v, want 200", res.SellerEarning)
	}
	if res.RefundAmount != 115 {
		t.Errorf("renter refund: got %v, want 115 (deposit 100 + insurance 15)", res.RefundAmount)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("entries: got %d, want 2", len(res.Transactions))
	}
	if res.Transactions[0].Type != models.TxOrderEarning || res.Transactions[0].Amount != 200 {
		t.Errorf("first entry: got %s %v, want ORDER_EARNING +200", res.Transactions[0].Type, res.Transactions[0].Amount)
	}
	if res.Transactions[1].Type != models.TxRefund || res.Transactions[1].Amount != 0 {
		t.Errorf("second entry: got %s %v, want REFUND 0", res.Transactions[1].Type, res.Transactions[1].Amount)
	}
}

func TestDetermineSettlement_PenaltyThreshold(t *testing.T) {
	// penalty 80 <= deposit 100: the deposit covers it, no PENALTY entry.
	covered := testOrder()
	covered.PenaltyAmount = 80
	res, err := DetermineSettlement(covered, EventLateReturnWithPenalty)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	if len(res.Transactions) != 1 || res.Transactions[0].Type != models.TxOrderEarning {
		t.Fatalf("covered penalty: got %+v, want ORDER_EARNING only", res.Transactions)
	}

	// penalty 150 > deposit 100: the seller absorbs the 50 excess.
	excess := testOrder()
	excess.PenaltyAmount = 150
	res, err = DetermineSettlement(excess, EventLateReturnWithPenalty)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("excess penalty: got %d entries, want 2", len(res.Transactions))
	}
	p := res.Transactions[1]
	if p.Type != models.TxPenalty || p.Amount != -50 {
		t.Errorf("got %s %v, want PENALTY -50", p.Type, p.Amount)
	}
}

func TestDetermineSettlement_DepositRefund(t *testing.T) {
	res, err := DetermineSettlement(testOrder(), EventDepositRefund)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("entries: got %d, want 1", len(res.Transactions))
	}
	e := res.Transactions[0]
	if e.Type != models.TxDepositRefund || e.Amount != -100 {
		t.Errorf("got %s %v, want DEPOSIT_REFUND -100", e.Type, e.Amount)
	}

	noDeposit := testOrder()
	noDeposit.DepositAmount = 0
	res, err = DetermineSettlement(noDeposit, EventDepositRefund)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	if len(res.Transactions) != 0 {
		t.Errorf("zero deposit: got %d entries, want none", len(res.Transactions))
	}
}

// A re-delivered event must not double-book: types already on the order's
// ledger are skipped, only the missing ones are booked.
func TestSplitBookedTypes_SkipsRedelivered(t *testing.T) {
	order := testOrder()
	order.PenaltyAmount = 150
	res, err := DetermineSettlement(order, EventLateReturnWithPenalty)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}

	// First delivery booked the earning, then failed before the penalty.
	toBook, skipped := splitBookedTypes([]string{models.TxOrderEarning}, res.Transactions)
	if len(skipped) != 1 || skipped[0] != models.TxOrderEarning {
		t.Errorf("skipped: got %v, want [ORDER_EARNING]", skipped)
	}
	if len(toBook) != 1 || toBook[0].Type != models.TxPenalty {
		t.Fatalf("toBook: got %+v, want the PENALTY entry only", toBook)
	}
}

func TestSplitBookedTypes_FullyBooked(t *testing.T) {
	res, err := DetermineSettlement(testOrder(), EventCompleted)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	toBook, skipped := splitBookedTypes([]string{models.TxOrderEarning}, res.Transactions)
	if len(toBook) != 0 {
		t.Errorf("second delivery must book nothing, got %+v", toBook)
	}
	if len(skipped) != 1 {
		t.Errorf("skipped: got %v, want the one already-booked type", skipped)
	}
}

func TestSplitBookedTypes_CleanOrder(t *testing.T) {
	res, err := DetermineSettlement(testOrder(), EventCancelledAfterCutoff)
	if err != nil {
		t.Fatalf("DetermineSettlement: %v", err)
	}
	toBook, skipped := splitBookedTypes(nil, res.Transactions)
	if len(toBook) != 2 || len(skipped) != 0 {
		t.Errorf("clean order: got %d to book / %d skipped, want 2 / 0", len(toBook), len(skipped))
	}
}

func TestDetermineSettlement_UnknownEvent(t *testing.T) {
	if _, err := DetermineSettlement(testOrder(), "exploded"); err == nil {
		t.Fatal("unknown event must error")
	}
}
