package referral

import (
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

// Stats is the read-side projection of a profile's ledger.
type Stats struct {
	TotalEarnings    int64 `json:"total_earnings"`
	AvailableBalance int64 `json:"available_balance"`
	WithdrawnAmount  int64 `json:"withdrawn_amount"`
	ReferralCount    int64 `json:"referral_count"`
}

// GetStats projects the committed balances plus the direct referral count.
// Plain reads, no locking.
func (e *Engine) GetStats(userRef string) (Stats, error) {
	profile, err := e.ProfileByUserRef(userRef)
	if err != nil {
		return Stats{}, err
	}

	var count int64
	if err := e.db.Model(&db.UserProfile{}).
		Where("referred_by = ?", profile.ID).
		Count(&count).Error; err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalEarnings:    profile.TotalEarnings,
		AvailableBalance: profile.AvailableBalance,
		WithdrawnAmount:  profile.WithdrawnAmount,
		ReferralCount:    count,
	}, nil
}

// TreeMember is one profile in the downstream referral tree.
type TreeMember struct {
	ProfileID uint   `json:"profile_id"`
	UserRef   string `json:"user_ref"`
	FullName  string `json:"full_name"`
	Level     int    `json:"level"`
}

// AllLevelReferredUsers expands the downstream tree breadth-first, one
// batched query per level instead of one per member, stopping at the
// first empty level.
func (e *Engine) AllLevelReferredUsers(userRef string, maxLevels int) ([]TreeMember, error) {
	profile, err := e.ProfileByUserRef(userRef)
	if err != nil {
		return nil, err
	}
	if maxLevels <= 0 || maxLevels > MAX_REFERRAL_LEVELS {
		maxLevels = MAX_REFERRAL_LEVELS
	}

	members := []TreeMember{}
	frontier := []uint{profile.ID}

	for level := 1; level <= maxLevels; level++ {
		var next []db.UserProfile
		if err := e.db.Where("referred_by IN ?", frontier).
			Order("id ASC").Find(&next).Error; err != nil {
			return nil, err
		}
		if len(next) == 0 {
			break
		}

		frontier = frontier[:0]
		for _, p := range next {
			members = append(members, TreeMember{
				ProfileID: p.ID,
				UserRef:   p.UserRef,
				FullName:  p.FullName,
				Level:     level,
			})
			frontier = append(frontier, p.ID)
		}
	}

	return members, nil
}
