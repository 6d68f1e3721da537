package db

import (
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	var err error

	dsn := os.Getenv("DB")

	// TranslateError turns driver duplicate-key errors into
	// gorm.ErrDuplicatedKey, which the allocator and distributor rely on
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}
}

// Sync migrates the schema. Called once at startup.
func Sync() {
	err := DB.AutoMigrate(&UserProfile{}, &ReferralCommission{}, &WithdrawalRequest{})
	if err != nil {
		panic(err)
	}
}
