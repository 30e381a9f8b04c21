package wallet

import (
	"testing"
	"time"

	"opeec/models"
)

func completed(amount float64, txType string) models.TransactionLog {
	return models.TransactionLog{
		SellerID:  1,
		Type:      txType,
		Amount:    amount,
		Status:    models.TxStatusCompleted,
		CreatedAt: time.Now(),
	}
}

func TestFoldBalances_Empty(t *testing.T) {
	bal := FoldBalances(nil, nil)
	if bal.AvailableBalance != 0 || bal.PendingBalance != 0 || bal.TotalBalance != 0 {
		t.Fatalf("empty fold: got %+v, want all zero", bal)
	}
}

func TestFoldBalances_OnlyCompletedCount(t *testing.T) {
	entries := []models.TransactionLog{
		completed(200, models.TxOrderEarning),
		{SellerID: 1, Type: models.TxOrderEarning, Amount: 500, Status: models.TxStatusPending},
		{SellerID: 1, Type: models.TxOrderEarning, Amount: 900, Status: models.TxStatusFailed},
	}
	bal := FoldBalances(entries, nil)
	if bal.TotalBalance != 200 {
		t.Errorf("total: got %v, want 200 (pending/failed must not count)", bal.TotalBalance)
	}
}

func TestFoldBalances_Idempotent(t *testing.T) {
	entries := []models.TransactionLog{
		completed(200, models.TxOrderEarning),
		completed(-150, models.TxWithdrawHold),
	}
	requests := []models.WithdrawalRequest{
		{SellerID: 1, Amount: 150, Status: models.WithdrawalPending},
	}
	first := FoldBalances(entries, requests)
	second := FoldBalances(entries, requests)
	if first != second {
		t.Fatalf("fold not idempotent: %+v vs %+v", first, second)
	}
}

func TestFoldBalances_NoDoubleDeduction(t *testing.T) {
	// A hold of 150 against a balance of 200 must leave exactly 50.
	// pending_balance reports the outstanding request for display but is
	// never subtracted from available a second time.
	entries := []models.TransactionLog{
		completed(200, models.TxOrderEarning),
		completed(-150, models.TxWithdrawHold),
	}
	requests := []models.WithdrawalRequest{
		{SellerID: 1, Amount: 150, Status: models.WithdrawalPending},
	}
	bal := FoldBalances(entries, requests)
	if bal.AvailableBalance != 50 {
		t.Errorf("available: got %v, want 50", bal.AvailableBalance)
	}
	if bal.PendingBalance != 150 {
		t.Errorf("pending: got %v, want 150", bal.PendingBalance)
	}
}

func TestFoldBalances_HoldReleaseReversal(t *testing.T) {
	entries := []models.TransactionLog{
		completed(200, models.TxOrderEarning),
		completed(-150, models.TxWithdrawHold),
		completed(150, models.TxWithdrawRelease),
	}
	bal := FoldBalances(entries, nil)
	if bal.AvailableBalance != 200 {
		t.Errorf("available after hold+release: got %v, want 200", bal.AvailableBalance)
	}
}

func TestFoldBalances_ClampsNegativeTotal(t *testing.T) {
	entries := []models.TransactionLog{
		completed(100, models.TxOrderEarning),
		completed(-130, models.TxPenalty),
	}
	bal := FoldBalances(entries, nil)
	if bal.TotalBalance != -30 {
		t.Errorf("total: got %v, want -30", bal.TotalBalance)
	}
	if bal.AvailableBalance != 0 {
		t.Errorf("available must clamp at zero, got %v", bal.AvailableBalance)
	}
}

func TestFoldBalances_ApprovedCountsAsPending(t *testing.T) {
	requests := []models.WithdrawalRequest{
		{SellerID: 1, Amount: 100, Status: models.WithdrawalApproved},
		{SellerID: 1, Amount: 40, Status: models.WithdrawalPending},
		{SellerID: 1, Amount: 999, Status: models.WithdrawalRejected},
		{SellerID: 1, Amount: 999, Status: models.WithdrawalPaid},
	}
	bal := FoldBalances(nil, requests)
	if bal.PendingBalance != 140 {
		t.Errorf("pending: got %v, want 140 (terminal requests excluded)", bal.PendingBalance)
	}
}

// TestWithdrawalLifecycleFold walks the full example scenario: earn 200, hold
// 150, reject (release), hold 100, approve, mark paid. The ledger sum must
// reconcile at every step.
func TestWithdrawalLifecycleFold(t *testing.T) {
	var entries []models.TransactionLog

	entries = append(entries, completed(200, models.TxOrderEarning))
	if bal := FoldBalances(entries, nil); bal.AvailableBalance != 200 {
		t.Fatalf("after earning: got %v, want 200", bal.AvailableBalance)
	}

	entries = append(entries, completed(-150, models.TxWithdrawHold))
	pending := []models.WithdrawalRequest{{Amount: 150, Status: models.WithdrawalPending}}
	bal := FoldBalances(entries, pending)
	if bal.AvailableBalance != 50 || bal.PendingBalance != 150 {
		t.Fatalf("after hold: got %+v, want available 50 pending 150", bal)
	}

	// Rejection releases the hold exactly.
	entries = append(entries, completed(150, models.TxWithdrawRelease))
	bal = FoldBalances(entries, nil)
	if bal.AvailableBalance != 200 || bal.PendingBalance != 0 {
		t.Fatalf("after release: got %+v, want available 200 pending 0", bal)
	}

	// Second withdrawal of 100: hold, approve (no entry), then payout.
	entries = append(entries, completed(-100, models.TxWithdrawHold))
	bal = FoldBalances(entries, []models.WithdrawalRequest{{Amount: 100, Status: models.WithdrawalApproved}})
	if bal.AvailableBalance != 100 {
		t.Fatalf("after second hold: got %v, want 100", bal.AvailableBalance)
	}

	entries = append(entries, completed(-100, models.TxSellerPayout))
	bal = FoldBalances(entries, nil)
	if bal.AvailableBalance != 0 || bal.TotalBalance != 0 {
		t.Fatalf("after payout: got %+v, want zero", bal)
	}
}

func TestNormalizeWithdrawalAmount(t *testing.T) {
	cases := []struct {
		in      float64
		want    float64
		wantErr bool
	}{
		{-5, 0, true},
		{0, 0, true},
		// Sub-cent amounts round to 0.00 and must be rejected, not held.
		{0.004, 0, true},
		{0.01, 0.01, false},
		{99.999, 100, false},
		{150, 150, false},
	}
	for _, c := range cases {
		got, err := normalizeWithdrawalAmount(c.in)
		if c.wantErr {
			if err != ErrInvalidAmount {
				t.Errorf("normalize(%v): got err %v, want ErrInvalidAmount", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalize(%v): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("normalize(%v): got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCheckWithdrawalFunds(t *testing.T) {
	// Balance 200: a request of 250 must be rejected before anything is
	// written; a request of the full 200 goes through.
	bal := FoldBalances([]models.TransactionLog{
		completed(200, models.TxOrderEarning),
	}, nil)

	if err := checkWithdrawalFunds(250, bal); err != ErrInsufficientBalance {
		t.Errorf("250 against 200: got %v, want ErrInsufficientBalance", err)
	}
	if err := checkWithdrawalFunds(200, bal); err != nil {
		t.Errorf("200 against 200: unexpected error %v", err)
	}
}

func TestCheckWithdrawalFunds_ClampedBalance(t *testing.T) {
	// A negative ledger total clamps available to zero, so every positive
	// request is rejected.
	bal := FoldBalances([]models.TransactionLog{
		completed(100, models.TxOrderEarning),
		completed(-130, models.TxPenalty),
	}, nil)

	if err := checkWithdrawalFunds(0.01, bal); err != ErrInsufficientBalance {
		t.Errorf("request against clamped zero: got %v, want ErrInsufficientBalance", err)
	}
}

func TestCheckTransition_Allowed(t *testing.T) {
	cases := []struct{ from, to string }{
		{models.WithdrawalPending, models.WithdrawalApproved},
		{models.WithdrawalPending, models.WithdrawalRejected},
		{models.WithdrawalApproved, models.WithdrawalPaid},
		{models.WithdrawalApproved, models.WithdrawalRejected},
	}
	for _, c := range cases {
		if err := CheckTransition(c.from, c.to); err != nil {
			t.Errorf("%s -> %s: unexpected error %v", c.from, c.to, err)
		}
	}
}

func TestCheckTransition_TerminalImmutable(t *testing.T) {
	targets := []string{models.WithdrawalApproved, models.WithdrawalRejected, models.WithdrawalPaid, models.WithdrawalPending}
	for _, terminal := range []string{models.WithdrawalPaid, models.WithdrawalRejected} {
		for _, to := range targets {
			err := CheckTransition(terminal, to)
			if err == nil {
				t.Errorf("%s -> %s: expected state error", terminal, to)
				continue
			}
			se, ok := err.(*StateError)
			if !ok {
				t.Errorf("%s -> %s: expected *StateError, got %T", terminal, to, err)
				continue
			}
			if se.Current != terminal {
				t.Errorf("state error must report current status, got %q", se.Current)
			}
		}
	}
}

func TestCheckTransition_PendingCannotBePaid(t *testing.T) {
	if err := CheckTransition(models.WithdrawalPending, models.WithdrawalPaid); err == nil {
		t.Fatal("Pending -> Paid must be rejected (approval required first)")
	}
}
