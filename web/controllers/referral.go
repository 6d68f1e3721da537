package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amanjain8795/matratv-connect-main-sub000/referral"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/qrcode"
)

func MyStats(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	stats, err := engine.GetStats(profile.UserRef)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// MyReferrals lists the caller's downstream tree. The levels query
// parameter cuts the walk short; it defaults to the full seven.
func MyReferrals(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	levels := referral.MAX_REFERRAL_LEVELS
	if q := c.Query("levels"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid levels parameter",
			})
			return
		}
		levels = n
	}

	members, err := engine.AllLevelReferredUsers(profile.UserRef, levels)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals": members,
		"count":     len(members),
	})
}

func MyCommissions(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	rows, err := engine.CommissionsFor(profile.UserRef)
	if err != nil {
		respondError(c, err)
		return
	}

	commissions := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		commissions = append(commissions, gin.H{
			"level":        row.Level,
			"amount":       row.CommissionAmount,
			"rate":         row.CommissionRate,
			"trigger_type": row.TriggerType,
			"order_id":     row.OrderID,
			"status":       row.Status,
			"earned_at":    row.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"commissions": commissions,
	})
}

func MyReferralCode(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referral_code": profile.ReferralCode,
		"link":          qrcode.ReferralLink(profile.ReferralCode),
	})
}

// ReferralQR renders the caller's sharing link as a PNG for print media.
func ReferralQR(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	png, err := qrcode.GenerateReferralQR(profile.ReferralCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to render QR code",
		})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
