package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

func profileView(p db.UserProfile) gin.H {
	regNumber := ""
	if p.RegistrationNumber != nil {
		regNumber = *p.RegistrationNumber
	}
	return gin.H{
		"user_ref":            p.UserRef,
		"full_name":           p.FullName,
		"email":               p.Email,
		"referral_code":       p.ReferralCode,
		"registration_number": regNumber,
		"subscription_status": p.SubscriptionStatus,
		"total_earnings":      p.TotalEarnings,
		"available_balance":   p.AvailableBalance,
		"withdrawn_amount":    p.WithdrawnAmount,
		"joined_at":           p.CreatedAt.Format(time.RFC3339),
	}
}

// CreateProfile registers a referral profile for a user the identity
// service just signed up. Called service-to-service, not by end users.
func CreateProfile(c *gin.Context) {
	var body struct {
		UserRef      string `json:"user_ref"`
		FullName     string `json:"full_name"`
		Email        string `json:"email"`
		ReferralCode string `json:"referral_code"`
	}

	if c.BindJSON(&body) != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read body",
		})
		return
	}

	profile, err := engine.CreateProfile(body.UserRef, body.FullName, body.Email, body.ReferralCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileView(*profile))
}

func Me(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profileView(profile))
}

// AssignRegistrationNumber retries the number allocation for a profile
// that was created without one.
func AssignRegistrationNumber(c *gin.Context) {
	profile, err := engine.ProfileByUserRef(c.Param("user_ref"))
	if err != nil {
		respondError(c, err)
		return
	}

	number, err := engine.AllocateRegistrationNumber(profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"registration_number": number,
	})
}
