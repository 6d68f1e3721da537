package referral

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

const (
	CODE_PREFIX        = "MAT"
	CODE_RANDOM_LENGTH = 5
	codeAlphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	REG_NUMBER_FIRST        = 1001
	REG_NUMBER_MAX_ATTEMPTS = 10
)

// GenerateReferralCode returns a candidate code: the fixed prefix plus
// five random symbols from a 36-symbol alphabet. Uniqueness is decided by
// the store; callers retry on a persisted collision.
func GenerateReferralCode() (string, error) {
	suffix, err := gonanoid.Generate(codeAlphabet, CODE_RANDOM_LENGTH)
	if err != nil {
		return "", err
	}
	return CODE_PREFIX + suffix, nil
}

// AllocateRegistrationNumber assigns the profile the smallest unused
// number at or above MAT1001. Idempotent: a profile that already has one
// gets it back unchanged. Exhaustion is recoverable, the number stays
// unset and a later call continues where this one gave up.
func (e *Engine) AllocateRegistrationNumber(profileID uint) (string, error) {
	var profile db.UserProfile
	if err := e.db.First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	if profile.RegistrationNumber != nil {
		return *profile.RegistrationNumber, nil
	}

	for attempt := 0; attempt < REG_NUMBER_MAX_ATTEMPTS; attempt++ {
		suffix, err := e.reserveRegSuffix()
		if err != nil {
			return "", err
		}
		number := fmt.Sprintf("%s%d", CODE_PREFIX, suffix)

		res := e.db.Model(&db.UserProfile{}).
			Where("id = ? AND registration_number IS NULL", profile.ID).
			Update("registration_number", number)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				// another profile holds this number; the suffix is already
				// marked used in the span set, so the next attempt moves on
				continue
			}
			return "", res.Error
		}
		if res.RowsAffected == 0 {
			// a concurrent call assigned this profile first
			if err := e.db.First(&profile, profile.ID).Error; err != nil {
				return "", err
			}
			if profile.RegistrationNumber != nil {
				return *profile.RegistrationNumber, nil
			}
			continue
		}
		return number, nil
	}

	return "", ErrRegNumberExhausted
}

// reserveRegSuffix picks the smallest free suffix and marks it used in
// the in-memory span set. The unique index on registration_number stays
// the final arbiter; a suffix the set did not know about just costs one
// retry.
func (e *Engine) reserveRegSuffix() (int, error) {
	e.regMu.Lock()
	defer e.regMu.Unlock()

	if !e.regSeeded {
		if err := e.seedRegNumsLocked(); err != nil {
			return 0, err
		}
	}

	suffix := e.regNums.NextFree(REG_NUMBER_FIRST)
	e.regNums.Add(suffix)
	return suffix, nil
}

func (e *Engine) seedRegNumsLocked() error {
	var numbers []string
	if err := e.db.Model(&db.UserProfile{}).
		Where("registration_number IS NOT NULL").
		Pluck("registration_number", &numbers).Error; err != nil {
		return err
	}

	for _, n := range numbers {
		suffix, err := strconv.Atoi(strings.TrimPrefix(n, CODE_PREFIX))
		if err != nil {
			continue // legacy format, the unique index still protects it
		}
		e.regNums.Add(suffix)
	}

	e.regSeeded = true
	return nil
}
