package referral_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Amanjain8795/matratv-connect-main-sub000/referral"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// a single connection keeps the in-memory database alive and
	// serializes concurrent writers the way one sqlite file would
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&db.UserProfile{}, &db.ReferralCommission{}, &db.WithdrawalRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

func newTestEngine(t *testing.T) (*referral.Engine, *gorm.DB) {
	t.Helper()
	gdb := openTestDB(t)
	return referral.New(gdb, nil), gdb
}

// seedChain creates profiles root-first, each referred by the previous
// one, and returns them in creation order.
func seedChain(t *testing.T, eng *referral.Engine, refs ...string) []*db.UserProfile {
	t.Helper()

	profiles := make([]*db.UserProfile, 0, len(refs))
	parentCode := ""
	for _, ref := range refs {
		p, err := eng.CreateProfile(ref, "User "+ref, ref+"@example.com", parentCode)
		if err != nil {
			t.Fatalf("create profile %s: %v", ref, err)
		}
		profiles = append(profiles, p)
		parentCode = p.ReferralCode
	}
	return profiles
}

// failProfileLookups injects inject into every profile load for the given
// id, standing in for a flaky store. The returned func disarms the fault.
func failProfileLookups(t *testing.T, gdb *gorm.DB, id uint, inject error) func() {
	t.Helper()

	armed := true
	err := gdb.Callback().Query().After("gorm:query").Register("fail_profile_lookup", func(tx *gorm.DB) {
		if !armed {
			return
		}
		if _, ok := tx.Statement.Dest.(*db.UserProfile); !ok {
			return
		}
		for _, v := range tx.Statement.Vars {
			if n, ok := v.(uint); ok && n == id {
				tx.AddError(inject)
				return
			}
		}
	})
	if err != nil {
		t.Fatalf("register query callback: %v", err)
	}
	return func() { armed = false }
}

func mustProfile(t *testing.T, gdb *gorm.DB, id uint) db.UserProfile {
	t.Helper()
	var p db.UserProfile
	if err := gdb.First(&p, id).Error; err != nil {
		t.Fatalf("load profile %d: %v", id, err)
	}
	return p
}

func commissionCount(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(&db.ReferralCommission{}).Count(&n).Error; err != nil {
		t.Fatalf("count commissions: %v", err)
	}
	return n
}

// checkConservation asserts that every profile's total_earnings equals
// the sum of its commission rows.
func checkConservation(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	var profiles []db.UserProfile
	if err := gdb.Find(&profiles).Error; err != nil {
		t.Fatalf("load profiles: %v", err)
	}
	for _, p := range profiles {
		var sum int64
		err := gdb.Model(&db.ReferralCommission{}).
			Where("referrer_id = ?", p.ID).
			Select("COALESCE(SUM(commission_amount), 0)").
			Scan(&sum).Error
		if err != nil {
			t.Fatalf("sum commissions for %s: %v", p.UserRef, err)
		}
		if sum != p.TotalEarnings {
			t.Errorf("profile %s: total_earnings %d but commission rows sum to %d", p.UserRef, p.TotalEarnings, sum)
		}
	}
}
