package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amanjain8795/matratv-connect-main-sub000/monitoring"
	"github.com/Amanjain8795/matratv-connect-main-sub000/referral"
)

// Trigger ingests a commission event from the commerce backend. A partial
// failure still answers 200: the committed levels stand, and the upstream
// order flow must never be blocked on commission trouble.
func Trigger(c *gin.Context) {
	var body struct {
		UserRef     string `json:"user_ref"`
		TriggerType string `json:"trigger_type"`
		Amount      int64  `json:"amount"`
		OrderID     string `json:"order_id"`
	}

	if c.BindJSON(&body) != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read body",
		})
		return
	}

	// checked before the subscription flip below so a bad event cannot
	// activate anything
	if body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Amount must be positive",
		})
		return
	}

	trigger := referral.TriggerType(body.TriggerType)
	if trigger == referral.TriggerSubscriptionActivation {
		if err := engine.ActivateSubscription(body.UserRef); err != nil {
			respondError(c, err)
			return
		}
	}

	result, err := engine.Distribute(body.UserRef, trigger, body.Amount, body.OrderID)
	if err != nil {
		var partial *referral.PartialError
		if !errors.As(err, &partial) {
			respondError(c, err)
			return
		}
		// already logged by the engine
		monitoring.DistributionFailures.Inc()
	}

	if result.LevelsProcessed > 0 {
		monitoring.CommissionLevelsTotal.
			WithLabelValues(string(trigger)).
			Add(float64(result.LevelsProcessed))
	}

	c.JSON(http.StatusOK, gin.H{
		"levels_processed": result.LevelsProcessed,
		"stopped_reason":   string(result.StoppedReason),
	})
}
