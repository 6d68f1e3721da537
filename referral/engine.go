package referral

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

const CODE_CREATE_ATTEMPTS = 5

// Engine is the referral commission and balance ledger. It is an
// in-process library: the surrounding service hands it a store connection
// and calls it per request. All monetary amounts are integer paise.
type Engine struct {
	db  *gorm.DB
	log *zap.Logger

	// genCode yields referral code candidates, swapped in tests to force
	// collisions
	genCode func() (string, error)

	// registration number allocator state, seeded lazily from the store
	regMu     sync.Mutex
	regSeeded bool
	regNums   *SpanSet
}

func New(gdb *gorm.DB, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{db: gdb, log: log, genCode: GenerateReferralCode, regNums: NewSpanSet()}
}

// forUpdate adds a row lock on backends that have one. sqlite has no
// FOR UPDATE and serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CreateProfile registers a new profile, binding it to its referrer by
// referral code. An empty code creates a root profile. The referred_by
// link is set exactly once here and never reassigned, which is what keeps
// the referral forest acyclic.
func (e *Engine) CreateProfile(userRef, fullName, email, referredByCode string) (*db.UserProfile, error) {
	userRef = strings.TrimSpace(userRef)
	if userRef == "" {
		return nil, &ValidationError{Field: "user_ref", Reason: "must not be empty"}
	}

	var referredBy *uint
	if referredByCode != "" {
		var referrer db.UserProfile
		err := e.db.Where("referral_code = ?", referredByCode).First(&referrer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferrerNotFound
		}
		if err != nil {
			return nil, err
		}
		referredBy = &referrer.ID
	}

	var existing db.UserProfile
	err := e.db.Where("user_ref = ?", userRef).First(&existing).Error
	if err == nil {
		return nil, ErrProfileExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile := db.UserProfile{
		UserRef:            userRef,
		FullName:           fullName,
		Email:              email,
		ReferredBy:         referredBy,
		SubscriptionStatus: db.SubscriptionNone,
	}

	// codes are random, so a persisted collision just means roll a new one
	for attempt := 0; ; attempt++ {
		code, err := e.genCode()
		if err != nil {
			return nil, err
		}
		profile.ReferralCode = code

		err = e.db.Create(&profile).Error
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// the collision may be the user_ref, not the code
			var n int64
			if err := e.db.Model(&db.UserProfile{}).
				Where("user_ref = ?", userRef).Count(&n).Error; err == nil && n > 0 {
				return nil, ErrProfileExists
			}
			if attempt+1 < CODE_CREATE_ATTEMPTS {
				continue
			}
			return nil, ErrCodeExhausted
		}
		return nil, err
	}

	// best effort: a profile without a number is retried later
	if _, err := e.AllocateRegistrationNumber(profile.ID); err != nil {
		e.log.Warn("registration number not assigned",
			zap.String("user_ref", userRef),
			zap.Error(err))
	}

	if err := e.db.First(&profile, profile.ID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileByUserRef looks a profile up by its identity-store reference.
func (e *Engine) ProfileByUserRef(userRef string) (*db.UserProfile, error) {
	var p db.UserProfile
	err := e.db.Where("user_ref = ?", userRef).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ActivateSubscription flips the profile's subscription flag. Called by
// the trigger feed on subscription_activation events.
func (e *Engine) ActivateSubscription(userRef string) error {
	res := e.db.Model(&db.UserProfile{}).
		Where("user_ref = ?", userRef).
		Update("subscription_status", db.SubscriptionActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
