package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amanjain8795/matratv-connect-main-sub000/referral"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

var engine *referral.Engine

// Setup hands the controllers their engine. Called once from main before
// the routes are registered.
func Setup(e *referral.Engine) {
	engine = e
}

func currentProfile(c *gin.Context) (db.UserProfile, bool) {
	v, ok := c.Get("profile")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Failed to get user profile",
		})
		return db.UserProfile{}, false
	}
	profile, ok := v.(db.UserProfile)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get user profile",
		})
		return db.UserProfile{}, false
	}
	return profile, true
}

// respondError maps engine errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var vErr *referral.ValidationError
	var balErr *referral.InsufficientBalanceError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": vErr.Error(),
		})
	case errors.As(err, &balErr):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     "Insufficient balance",
			"available": balErr.Available,
			"requested": balErr.Requested,
		})
	case errors.Is(err, referral.ErrProfileNotFound),
		errors.Is(err, referral.ErrRequestNotFound),
		errors.Is(err, referral.ErrReferrerNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, referral.ErrProfileExists),
		errors.Is(err, referral.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
