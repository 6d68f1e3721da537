package referral

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

// Hop is one ancestor in a referrer chain. Level 1 is the direct referrer.
type Hop struct {
	ProfileID uint
	Level     int
}

// AncestorChain walks referred_by pointers upward, one profile lookup per
// hop. It is lazy and cannot be restarted. A missing ancestor row ends the
// walk silently: partially cleaned-up chains are tolerated, not fatal. Any
// other lookup failure also ends the walk and is held for Err, so callers
// can tell a broken store from a short chain.
//
// The walk takes no locks. referred_by never changes after creation, so
// nothing can restructure the chain under the cursor.
type AncestorChain struct {
	engine    *Engine
	nextID    *uint
	level     int
	maxLevels int
	err       error
}

// Ancestors returns a cursor over the referrer chain of the given profile.
func (e *Engine) Ancestors(profileID uint, maxLevels int) *AncestorChain {
	var p db.UserProfile
	if err := e.db.First(&p, profileID).Error; err != nil {
		chain := e.ancestorsFrom(nil, maxLevels) // empty walk
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			chain.err = err
		}
		return chain
	}
	return e.ancestorsFrom(p.ReferredBy, maxLevels)
}

func (e *Engine) ancestorsFrom(referredBy *uint, maxLevels int) *AncestorChain {
	return &AncestorChain{engine: e, nextID: referredBy, maxLevels: maxLevels}
}

// Next returns the next ancestor, or false when the chain ends, the level
// bound is reached, an ancestor row is missing, or a lookup fails.
func (c *AncestorChain) Next() (Hop, bool) {
	if c.nextID == nil || c.level >= c.maxLevels {
		return Hop{}, false
	}

	var p db.UserProfile
	if err := c.engine.db.First(&p, *c.nextID).Error; err != nil {
		c.nextID = nil
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.err = err
		}
		return Hop{}, false
	}

	c.level++
	c.nextID = p.ReferredBy
	return Hop{ProfileID: p.ID, Level: c.level}, true
}

// Err reports the lookup failure that ended the walk, nil after a clean end
// or a missing-ancestor truncation.
func (c *AncestorChain) Err() error { return c.err }
