package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amanjain8795/matratv-connect-main-sub000/monitoring"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/email"
)

func withdrawalView(w db.WithdrawalRequest) gin.H {
	view := gin.H{
		"id":           w.ID,
		"user_id":      w.UserID,
		"amount":       w.Amount,
		"destination":  w.Destination,
		"status":       w.Status,
		"admin_notes":  w.AdminNotes,
		"requested_at": w.RequestedAt.Format(time.RFC3339),
	}
	if w.ProcessedAt != nil {
		view["processed_at"] = w.ProcessedAt.Format(time.RFC3339)
	}
	return view
}

// CreateWithdrawal places a withdrawal hold against the caller's available
// balance.
func CreateWithdrawal(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var body struct {
		Amount      int64  `json:"amount"`
		Destination string `json:"destination"`
	}

	if c.BindJSON(&body) != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read body",
		})
		return
	}

	request, err := engine.CreateWithdrawal(profile.UserRef, body.Amount, body.Destination)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, withdrawalView(*request))
}

func MyWithdrawals(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	rows, err := engine.WithdrawalsFor(profile.UserRef)
	if err != nil {
		respondError(c, err)
		return
	}

	withdrawals := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		withdrawals = append(withdrawals, withdrawalView(row))
	}

	c.JSON(http.StatusOK, gin.H{
		"withdrawals": withdrawals,
	})
}

// AdminListWithdrawals feeds the back-office queue, oldest first.
func AdminListWithdrawals(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", db.WithdrawalPending, db.WithdrawalApproved, db.WithdrawalRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status parameter",
		})
		return
	}

	rows, err := engine.WithdrawalsByStatus(status)
	if err != nil {
		respondError(c, err)
		return
	}

	withdrawals := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		withdrawals = append(withdrawals, withdrawalView(row))
	}

	c.JSON(http.StatusOK, gin.H{
		"withdrawals": withdrawals,
	})
}

func ApproveWithdrawal(c *gin.Context) {
	processWithdrawal(c, true)
}

func RejectWithdrawal(c *gin.Context) {
	processWithdrawal(c, false)
}

func processWithdrawal(c *gin.Context, approve bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request id",
		})
		return
	}

	var body struct {
		AdminID string `json:"admin_id"`
		Notes   string `json:"notes"`
	}

	if c.BindJSON(&body) != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read body",
		})
		return
	}

	var request *db.WithdrawalRequest
	if approve {
		request, err = engine.ApproveWithdrawal(uint(id), body.AdminID, body.Notes)
	} else {
		request, err = engine.RejectWithdrawal(uint(id), body.AdminID, body.Notes)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.WithdrawalTransitions.WithLabelValues(request.Status).Inc()

	// notify the owner
	var owner db.UserProfile
	if err := db.DB.First(&owner, request.UserID).Error; err == nil {
		go func(to, status string, amount int64, notes string) {
			email.SendWithdrawalProcessedEmail(to, status, amount, notes)
		}(owner.Email, request.Status, request.Amount, body.Notes)
	}

	c.JSON(http.StatusOK, withdrawalView(*request))
}
