package referral

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

// CreateWithdrawal places a hold: the request row is inserted pending and
// available_balance is debited in the same transaction. The debit is a
// guarded update, so concurrent requests against the same profile can
// never jointly overdraw it.
func (e *Engine) CreateWithdrawal(userRef string, amount int64, destination string) (*db.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if strings.TrimSpace(destination) == "" {
		return nil, &ValidationError{Field: "destination", Reason: "must not be empty"}
	}

	profile, err := e.ProfileByUserRef(userRef)
	if err != nil {
		return nil, err
	}

	var request db.WithdrawalRequest
	err = e.db.Transaction(func(tx *gorm.DB) error {
		var locked db.UserProfile
		if err := forUpdate(tx).First(&locked, profile.ID).Error; err != nil {
			return err
		}
		if locked.AvailableBalance < amount {
			return &InsufficientBalanceError{Available: locked.AvailableBalance, Requested: amount}
		}

		res := tx.Model(&db.UserProfile{}).
			Where("id = ? AND available_balance >= ?", locked.ID, amount).
			Update("available_balance", gorm.Expr("available_balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &InsufficientBalanceError{Available: locked.AvailableBalance, Requested: amount}
		}

		request = db.WithdrawalRequest{
			UserID:      profile.ID,
			Amount:      amount,
			Destination: destination,
			Status:      db.WithdrawalPending,
			RequestedAt: time.Now(),
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ApproveWithdrawal marks a pending request approved and moves the held
// amount into withdrawn_amount. available_balance was already debited at
// creation.
func (e *Engine) ApproveWithdrawal(requestID uint, adminID, notes string) (*db.WithdrawalRequest, error) {
	return e.processWithdrawal(requestID, adminID, notes, db.WithdrawalApproved)
}

// RejectWithdrawal marks a pending request rejected and refunds the held
// amount to available_balance.
func (e *Engine) RejectWithdrawal(requestID uint, adminID, notes string) (*db.WithdrawalRequest, error) {
	return e.processWithdrawal(requestID, adminID, notes, db.WithdrawalRejected)
}

func (e *Engine) processWithdrawal(requestID uint, adminID, notes, newStatus string) (*db.WithdrawalRequest, error) {
	var request db.WithdrawalRequest
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != db.WithdrawalPending {
			return ErrAlreadyProcessed
		}

		now := time.Now()
		request.Status = newStatus
		request.AdminNotes = notes
		request.ProcessedAt = &now
		request.ProcessedBy = adminID
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		switch newStatus {
		case db.WithdrawalApproved:
			return tx.Model(&db.UserProfile{}).
				Where("id = ?", request.UserID).
				Update("withdrawn_amount", gorm.Expr("withdrawn_amount + ?", request.Amount)).Error
		case db.WithdrawalRejected:
			return tx.Model(&db.UserProfile{}).
				Where("id = ?", request.UserID).
				Update("available_balance", gorm.Expr("available_balance + ?", request.Amount)).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// WithdrawalsFor lists a user's withdrawal requests, newest first.
func (e *Engine) WithdrawalsFor(userRef string) ([]db.WithdrawalRequest, error) {
	profile, err := e.ProfileByUserRef(userRef)
	if err != nil {
		return nil, err
	}

	var rows []db.WithdrawalRequest
	if err := e.db.Where("user_id = ?", profile.ID).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// WithdrawalsByStatus feeds the admin queue, oldest first. An empty status
// lists everything.
func (e *Engine) WithdrawalsByStatus(status string) ([]db.WithdrawalRequest, error) {
	q := e.db.Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []db.WithdrawalRequest
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
