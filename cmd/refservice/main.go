package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Amanjain8795/matratv-connect-main-sub000/logging"
	"github.com/Amanjain8795/matratv-connect-main-sub000/referral"
	"github.com/Amanjain8795/matratv-connect-main-sub000/utils"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/controllers"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
	"github.com/Amanjain8795/matratv-connect-main-sub000/web/middleware"
)

func init() {
	utils.LoadEnv()
	db.Connect()
	db.Sync()
}

func main() {
	if err := logging.InitLogger(utils.Production()); err != nil {
		log.Fatalln("Error initializing logger:", err)
	}
	defer logging.Logger.Sync()

	controllers.Setup(referral.New(db.DB, logging.Logger))

	GINPORT := os.Getenv("GIN_PORT")
	if GINPORT == "" {
		GINPORT = "8080"
	}

	r := gin.Default()
	r.Use(middleware.RequestID)
	r.Use(middleware.SetupCORS())
	r.Use(middleware.Metrics())

	globalLimiter := middleware.NewClientLimiter(60, 30) // 60 requests/min/IP
	globalLimiter.StartCleanup(10*time.Minute, 15*time.Minute)
	limited := globalLimiter.Middleware()

	// commerce backend feed, authenticated service-to-service
	r.POST("/trigger", middleware.AdminAuth, controllers.Trigger)
	r.POST("/profiles", middleware.AdminAuth, controllers.CreateProfile)
	r.POST("/profiles/:user_ref/registration-number", middleware.AdminAuth, controllers.AssignRegistrationNumber)

	// user-facing API
	r.GET("/me", limited, middleware.RequireAuth, controllers.Me)
	r.GET("/me/stats", limited, middleware.RequireAuth, controllers.MyStats)
	r.GET("/me/referrals", limited, middleware.RequireAuth, controllers.MyReferrals)
	r.GET("/me/referrals/code", limited, middleware.RequireAuth, controllers.MyReferralCode)
	r.GET("/me/referrals/qr", limited, middleware.RequireAuth, controllers.ReferralQR)
	r.GET("/me/commissions", limited, middleware.RequireAuth, controllers.MyCommissions)
	r.POST("/withdrawals", limited, middleware.RequireAuth, controllers.CreateWithdrawal)
	r.GET("/withdrawals", limited, middleware.RequireAuth, controllers.MyWithdrawals)

	// Admin routes
	r.GET("/admin/withdrawals", middleware.AdminAuth, controllers.AdminListWithdrawals)
	r.POST("/admin/withdrawals/:id/approve", middleware.AdminAuth, controllers.ApproveWithdrawal)
	r.POST("/admin/withdrawals/:id/reject", middleware.AdminAuth, controllers.RejectWithdrawal)
	r.GET("/admin/reports/commissions", middleware.AdminAuth, controllers.CommissionReport)

	r.GET("/health", controllers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := r.Run(":" + GINPORT); err != nil {
		log.Fatalln(err)
	}
}
