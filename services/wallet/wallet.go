package wallet

import (
	"errors"
	"fmt"
	"time"

	"opeec/models"
	"opeec/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seller-facing validation errors. Messages are terse on purpose; admin-facing
// state conflicts go through StateError instead.
var (
	ErrInvalidAmount       = errors.New("Valid withdrawal amount is required")
	ErrInsufficientBalance = errors.New("Insufficient balance")
	ErrMissingReference    = errors.New("Transaction reference is required")
	ErrMissingScreenshot   = errors.New("Payment screenshot is required")
	ErrMissingReason       = errors.New("Rejection reason is required")
	ErrUnknownType         = errors.New("Unknown transaction type")
)

// StateError reports an illegal withdrawal transition. It carries the current
// status so admins can resolve the conflict manually.
type StateError struct {
	Current   string
	Attempted string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a withdrawal request in status %q", e.Attempted, e.Current)
}

// allowedTransitions maps a withdrawal status to the statuses it may move to.
// Paid and Rejected are terminal and have no entry.
var allowedTransitions = map[string][]string{
	models.WithdrawalPending:  {models.WithdrawalApproved, models.WithdrawalRejected},
	models.WithdrawalApproved: {models.WithdrawalPaid, models.WithdrawalRejected},
}

// CheckTransition returns a StateError when moving from current to next is not
// permitted by the withdrawal lifecycle.
func CheckTransition(current, next string) error {
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return &StateError{Current: current, Attempted: transitionVerb(next)}
}

func transitionVerb(next string) string {
	switch next {
	case models.WithdrawalApproved:
		return "approve"
	case models.WithdrawalRejected:
		return "reject"
	case models.WithdrawalPaid:
		return "mark paid"
	default:
		return "transition"
	}
}

var validTxTypes = map[string]bool{
	models.TxOrderEarning:    true,
	models.TxPenalty:         true,
	models.TxRefund:          true,
	models.TxDepositRefund:   true,
	models.TxSellerPayout:    true,
	models.TxWithdrawHold:    true,
	models.TxWithdrawRelease: true,
}

// Balances is the wallet projection returned to callers: plain data, no
// framework types, so the HTTP layer can format it freely.
type Balances struct {
	AvailableBalance float64 `json:"available_balance"`
	PendingBalance   float64 `json:"pending_balance"`
	TotalBalance     float64 `json:"total_balance"`
}

// FoldBalances folds a seller's transaction log into balance numbers. Entries
// must already be filtered to the seller and ordered by (created_at, id).
// Only completed entries count. available is the clamped ledger sum; pending
// is a display aggregate of outstanding withdrawal requests and is never
// subtracted from available a second time; the HOLD entries already did that
// inside the fold.
func FoldBalances(entries []models.TransactionLog, requests []models.WithdrawalRequest) Balances {
	var total float64
	for _, e := range entries {
		if e.Status != models.TxStatusCompleted {
			continue
		}
		total += e.Amount
	}
	total = utils.Round2(total)

	var pending float64
	for _, r := range requests {
		if r.Status == models.WithdrawalPending || r.Status == models.WithdrawalApproved {
			pending += r.Amount
		}
	}

	available := total
	if available < 0 {
		available = 0
	}

	return Balances{
		AvailableBalance: available,
		PendingBalance:   utils.Round2(pending),
		TotalBalance:     total,
	}
}

// Entry is the input to CreateTransaction. Status defaults to completed and
// ReferenceID is assigned on insert.
type Entry struct {
	SellerID            uint
	Type                string
	Amount              float64
	Status              string
	OrderID             *uint
	WithdrawalRequestID *uint
	Description         string
	Metadata            *models.TxMetadata
}

// Service is the ledger engine. Every balance-changing operation funnels
// through createEntry: insert the immutable log row, refold the full ledger,
// write the cached wallet. Nothing else mutates seller_wallets.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// EnsureWallet lazily creates the cached wallet row for a seller. Unknown
// sellers get a zero-balance wallet, not an error.
func (s *Service) EnsureWallet(sellerID uint) (*models.SellerWallet, error) {
	var w models.SellerWallet
	err := s.db.Where(models.SellerWallet{SellerID: sellerID}).
		Attrs(models.SellerWallet{BalanceUpdatedAt: time.Now()}).
		FirstOrCreate(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ComputeBalance refolds the seller's full ledger and persists the projection.
// It is a pure fold of history, not an incremental update, so calling it twice
// with no new transactions yields identical numbers.
func (s *Service) ComputeBalance(sellerID uint) (Balances, error) {
	var out Balances
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, sellerID)
		if err != nil {
			return err
		}
		out, err = refold(tx, w)
		return err
	})
	return out, err
}

// GetBalances returns the cached projection, refolding first when
// forceRecompute is set or the wallet has never been folded.
func (s *Service) GetBalances(sellerID uint, forceRecompute bool) (Balances, error) {
	w, err := s.EnsureWallet(sellerID)
	if err != nil {
		return Balances{}, err
	}
	if forceRecompute || w.LastTransactionID == nil {
		return s.ComputeBalance(sellerID)
	}
	return Balances{
		AvailableBalance: w.AvailableBalance,
		PendingBalance:   w.PendingBalance,
		TotalBalance:     w.TotalBalance,
	}, nil
}

// CreateTransaction appends a ledger entry and refreshes the projection in one
// database transaction. This is the only write path into transaction_logs.
func (s *Service) CreateTransaction(e Entry) (*models.TransactionLog, error) {
	if !validTxTypes[e.Type] {
		return nil, ErrUnknownType
	}
	var row *models.TransactionLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, e.SellerID)
		if err != nil {
			return err
		}
		row, err = createEntry(tx, e)
		if err != nil {
			return err
		}
		_, err = refold(tx, w)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// normalizeWithdrawalAmount cent-rounds the requested amount and validates it.
// Rounding happens first so sub-cent requests cannot slip through as
// zero-amount holds.
func normalizeWithdrawalAmount(amount float64) (float64, error) {
	amount = utils.Round2(amount)
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// checkWithdrawalFunds rejects a request exceeding the freshly folded
// available balance. Callers run it inside the wallet-locked transaction,
// before any row is written.
func checkWithdrawalFunds(amount float64, bal Balances) error {
	if amount > bal.AvailableBalance {
		return ErrInsufficientBalance
	}
	return nil
}

// CreateWithdrawal inserts a Pending request and its paired hold entry. The
// balance check and the hold write happen under the same wallet row lock, so
// two concurrent requests cannot both spend the same funds against a stale
// read. A failed hold rolls the request back with it.
func (s *Service) CreateWithdrawal(sellerID uint, amount float64, paymentMethod string) (*models.WithdrawalRequest, error) {
	amount, err := normalizeWithdrawalAmount(amount)
	if err != nil {
		return nil, err
	}

	var req models.WithdrawalRequest
	err = s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, sellerID)
		if err != nil {
			return err
		}

		// Fresh fold, never the cached number.
		bal, err := refold(tx, w)
		if err != nil {
			return err
		}
		if err := checkWithdrawalFunds(amount, bal); err != nil {
			return err
		}

		req = models.WithdrawalRequest{
			SellerID:      sellerID,
			Amount:        amount,
			Status:        models.WithdrawalPending,
			PaymentMethod: paymentMethod,
		}
		if err := tx.Create(&req).Error; err != nil {
			return err
		}

		hold, err := createEntry(tx, Entry{
			SellerID:            sellerID,
			Type:                models.TxWithdrawHold,
			Amount:              -amount,
			WithdrawalRequestID: &req.ID,
			Description:         fmt.Sprintf("Hold for withdrawal request #%d", req.ID),
			Metadata: &models.TxMetadata{Withdrawal: &models.WithdrawalMeta{
				RequestedAmount: amount,
				PaymentMethod:   paymentMethod,
			}},
		})
		if err != nil {
			return err
		}

		req.HoldTransactionID = &hold.ID
		if err := tx.Model(&req).Update("hold_transaction_id", hold.ID).Error; err != nil {
			return err
		}

		_, err = refold(tx, w)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ApproveWithdrawal moves Pending -> Approved. The hold already reserved the
// funds, so no ledger entry is written; only workflow fields change.
func (s *Service) ApproveWithdrawal(id uint, adminID int64, transactionID, screenshotURL string) (*models.WithdrawalRequest, error) {
	if transactionID == "" {
		return nil, ErrMissingReference
	}
	if screenshotURL == "" {
		return nil, ErrMissingScreenshot
	}

	var req models.WithdrawalRequest
	err := s.transition(id, &req, func(tx *gorm.DB, w *models.SellerWallet) error {
		if err := CheckTransition(req.Status, models.WithdrawalApproved); err != nil {
			return err
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":               models.WithdrawalApproved,
			"external_reference":   transactionID,
			"screenshot_url":       screenshotURL,
			"reviewed_by_admin_id": adminID,
			"reviewed_at":          now,
			"approved_at":          now,
		}
		if err := tx.Model(&req).Updates(updates).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RejectWithdrawal moves Pending or Approved -> Rejected and writes the
// RELEASE entry that exactly reverses the hold.
func (s *Service) RejectWithdrawal(id uint, adminID int64, reason, transactionID string) (*models.WithdrawalRequest, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}

	var req models.WithdrawalRequest
	err := s.transition(id, &req, func(tx *gorm.DB, w *models.SellerWallet) error {
		if err := CheckTransition(req.Status, models.WithdrawalRejected); err != nil {
			return err
		}

		_, err := createEntry(tx, Entry{
			SellerID:            req.SellerID,
			Type:                models.TxWithdrawRelease,
			Amount:              req.Amount,
			WithdrawalRequestID: &req.ID,
			Description:         fmt.Sprintf("Release hold for rejected withdrawal request #%d", req.ID),
			Metadata: &models.TxMetadata{Withdrawal: &models.WithdrawalMeta{
				RequestedAmount: req.Amount,
				AdminID:         adminID,
				GatewayRef:      transactionID,
				RejectionReason: reason,
			}},
		})
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":               models.WithdrawalRejected,
			"rejection_reason":     reason,
			"reviewed_by_admin_id": adminID,
			"reviewed_at":          now,
			"rejected_at":          now,
		}
		if transactionID != "" {
			updates["external_reference"] = transactionID
		}
		return tx.Model(&req).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkWithdrawalPaid moves Approved -> Paid and writes the SELLER_PAYOUT
// entry. The hold is not separately released: the payout is the permanent
// debit the hold was provisionally standing in for.
func (s *Service) MarkWithdrawalPaid(id uint, adminID int64, transactionID string) (*models.WithdrawalRequest, error) {
	if transactionID == "" {
		return nil, ErrMissingReference
	}

	var req models.WithdrawalRequest
	err := s.transition(id, &req, func(tx *gorm.DB, w *models.SellerWallet) error {
		if err := CheckTransition(req.Status, models.WithdrawalPaid); err != nil {
			return err
		}

		payout, err := createEntry(tx, Entry{
			SellerID:            req.SellerID,
			Type:                models.TxSellerPayout,
			Amount:              -req.Amount,
			WithdrawalRequestID: &req.ID,
			Description:         fmt.Sprintf("Payout for withdrawal request #%d", req.ID),
			Metadata: &models.TxMetadata{Withdrawal: &models.WithdrawalMeta{
				RequestedAmount: req.Amount,
				AdminID:         adminID,
				GatewayRef:      transactionID,
			}},
		})
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":                models.WithdrawalPaid,
			"external_reference":    transactionID,
			"reviewed_by_admin_id":  adminID,
			"reviewed_at":           now,
			"paid_at":               now,
			"payout_transaction_id": payout.ID,
		}
		return tx.Model(&req).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// transition runs an admin-side withdrawal transition: lock the seller's
// wallet row first (per-seller serialization, same order as CreateWithdrawal
// to avoid lock inversion), re-read the request under lock, apply fn, then
// refold the projection.
func (s *Service) transition(id uint, req *models.WithdrawalRequest, fn func(tx *gorm.DB, w *models.SellerWallet) error) error {
	// Read outside the lock only to learn the seller id.
	if err := s.db.First(req, id).Error; err != nil {
		return err
	}
	sellerID := req.SellerID

	return s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, sellerID)
		if err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(req, id).Error; err != nil {
			return err
		}
		if err := fn(tx, w); err != nil {
			return err
		}
		_, err = refold(tx, w)
		return err
	})
}

// lockWallet ensures the wallet row exists and takes a FOR UPDATE lock on it,
// serializing all balance-changing work for one seller.
func lockWallet(tx *gorm.DB, sellerID uint) (*models.SellerWallet, error) {
	var w models.SellerWallet
	err := tx.Where(models.SellerWallet{SellerID: sellerID}).
		Attrs(models.SellerWallet{BalanceUpdatedAt: time.Now()}).
		FirstOrCreate(&w).Error
	if err != nil {
		return nil, err
	}
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("seller_id = ?", sellerID).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// createEntry inserts the immutable log row. No update path exists anywhere
// in this package: corrections are new, opposite entries.
func createEntry(tx *gorm.DB, e Entry) (*models.TransactionLog, error) {
	status := e.Status
	if status == "" {
		status = models.TxStatusCompleted
	}
	row := models.TransactionLog{
		SellerID:            e.SellerID,
		Type:                e.Type,
		Amount:              utils.Round2(e.Amount),
		Status:              status,
		OrderID:             e.OrderID,
		WithdrawalRequestID: e.WithdrawalRequestID,
		ReferenceID:         utils.NewLedgerReferenceID(),
		Description:         e.Description,
		Metadata:            e.Metadata,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// refold loads the seller's full ledger in creation order (id breaks ties),
// folds it, and writes the cached projection. Storage errors propagate: an
// inconsistent cache is worse than a visible error.
func refold(tx *gorm.DB, w *models.SellerWallet) (Balances, error) {
	var entries []models.TransactionLog
	err := tx.Where("seller_id = ? AND status = ?", w.SellerID, models.TxStatusCompleted).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return Balances{}, err
	}

	var requests []models.WithdrawalRequest
	err = tx.Where("seller_id = ? AND status IN ?", w.SellerID,
		[]string{models.WithdrawalPending, models.WithdrawalApproved}).
		Find(&requests).Error
	if err != nil {
		return Balances{}, err
	}

	bal := FoldBalances(entries, requests)

	updates := map[string]interface{}{
		"available_balance":  bal.AvailableBalance,
		"pending_balance":    bal.PendingBalance,
		"total_balance":      bal.TotalBalance,
		"balance_updated_at": time.Now(),
	}
	if n := len(entries); n > 0 {
		updates["last_transaction_id"] = entries[n-1].ID
	}
	if err := tx.Model(w).Updates(updates).Error; err != nil {
		return Balances{}, err
	}

	w.AvailableBalance = bal.AvailableBalance
	w.PendingBalance = bal.PendingBalance
	w.TotalBalance = bal.TotalBalance
	return bal, nil
}
