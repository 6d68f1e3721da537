package referral

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

type TriggerType string

const (
	TriggerOrderPurchase          TriggerType = "order_purchase"
	TriggerSubscriptionActivation TriggerType = "subscription_activation"
)

func (t TriggerType) Valid() bool {
	return t == TriggerOrderPurchase || t == TriggerSubscriptionActivation
}

// StopReason says why a distribution walk ended.
type StopReason string

const (
	StopChainEnd         StopReason = "chain-end"
	StopMaxLevels        StopReason = "max-levels"
	StopError            StopReason = "error"
	StopAlreadyProcessed StopReason = "already-processed"
	StopNoReferrer       StopReason = "no-referrer"
)

type DistributionResult struct {
	LevelsProcessed int
	StoppedReason   StopReason
}

// Distribute pays multi-level commissions for one trigger event. For each
// ancestor up to MAX_REFERRAL_LEVELS it inserts a commission row and
// credits the ancestor's balances, one transaction per level, so a reader
// never sees a row without its balance increment. A failed level, or a
// failed ancestor lookup, stops the walk; levels already committed stay
// committed and the caller gets a PartialError, never a rollback. The
// upstream order must not be blocked by commission trouble.
func (e *Engine) Distribute(triggerUserRef string, trigger TriggerType, baseAmount int64, orderID string) (DistributionResult, error) {
	if baseAmount <= 0 {
		return DistributionResult{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !trigger.Valid() {
		return DistributionResult{}, &ValidationError{Field: "trigger_type", Reason: "unknown trigger"}
	}
	if strings.TrimSpace(triggerUserRef) == "" {
		return DistributionResult{}, &ValidationError{Field: "user_ref", Reason: "must not be empty"}
	}

	profile, err := e.ProfileByUserRef(triggerUserRef)
	if err != nil {
		return DistributionResult{}, err
	}

	// a trigger that already produced rows is a no-op, retries are expected
	var existing int64
	if err := e.db.Model(&db.ReferralCommission{}).
		Where("trigger_user_id = ? AND trigger_type = ?", triggerUserRef, string(trigger)).
		Count(&existing).Error; err != nil {
		return DistributionResult{}, err
	}
	if existing > 0 {
		return DistributionResult{StoppedReason: StopAlreadyProcessed}, nil
	}

	if profile.ReferredBy == nil {
		return DistributionResult{StoppedReason: StopNoReferrer}, nil
	}

	var orderRef *string
	if orderID != "" {
		orderRef = &orderID
	}

	levels := 0
	chain := e.ancestorsFrom(profile.ReferredBy, MAX_REFERRAL_LEVELS)
	for {
		hop, ok := chain.Next()
		if !ok {
			break
		}

		amount := CommissionAmount(baseAmount, hop.Level)

		err := e.db.Transaction(func(tx *gorm.DB) error {
			row := db.ReferralCommission{
				ReferrerID:       hop.ProfileID,
				RefereeID:        profile.ID,
				OrderID:          orderRef,
				TriggerUserID:    triggerUserRef,
				TriggerType:      string(trigger),
				Level:            hop.Level,
				CommissionRate:   Rate(hop.Level),
				CommissionAmount: amount,
				Status:           db.CommissionPending,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			return tx.Model(&db.UserProfile{}).
				Where("id = ?", hop.ProfileID).
				Updates(map[string]interface{}{
					"total_earnings":    gorm.Expr("total_earnings + ?", amount),
					"available_balance": gorm.Expr("available_balance + ?", amount),
				}).Error
		})

		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// lost a race against a concurrent retry of the same trigger
				return DistributionResult{LevelsProcessed: levels, StoppedReason: StopAlreadyProcessed}, nil
			}
			e.log.Error("commission level failed, keeping committed levels",
				zap.String("user_ref", triggerUserRef),
				zap.String("trigger", string(trigger)),
				zap.Int("level", hop.Level),
				zap.Error(err))
			return DistributionResult{LevelsProcessed: levels, StoppedReason: StopError},
				&PartialError{LevelsProcessed: levels, Cause: err}
		}

		levels++
	}

	if err := chain.Err(); err != nil {
		e.log.Error("ancestor lookup failed, keeping committed levels",
			zap.String("user_ref", triggerUserRef),
			zap.String("trigger", string(trigger)),
			zap.Int("level", levels+1),
			zap.Error(err))
		return DistributionResult{LevelsProcessed: levels, StoppedReason: StopError},
			&PartialError{LevelsProcessed: levels, Cause: err}
	}

	reason := StopChainEnd
	if levels == MAX_REFERRAL_LEVELS {
		reason = StopMaxLevels
	}
	return DistributionResult{LevelsProcessed: levels, StoppedReason: reason}, nil
}

// CommissionsFor lists a profile's earned commissions, newest first.
func (e *Engine) CommissionsFor(userRef string) ([]db.ReferralCommission, error) {
	profile, err := e.ProfileByUserRef(userRef)
	if err != nil {
		return nil, err
	}

	var rows []db.ReferralCommission
	if err := e.db.Where("referrer_id = ?", profile.ID).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
