package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

// RequireAuth resolves the Bearer token issued by the identity service and
// loads the caller's referral profile. The token's sub claim carries the
// upstream user reference.
func RequireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if exp, ok := claims["exp"].(float64); !ok || float64(time.Now().Unix()) > exp {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var profile db.UserProfile
	err = db.DB.Where("user_ref = ?", sub).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No referral profile for this account"})
		c.Abort()
		return
	}
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Set("profile", profile)
	c.Next()
}

// AdminAuth guards the back-office endpoints with a shared key. Only the
// bcrypt hash of the key lives in the environment.
func AdminAuth(c *gin.Context) {
	key := c.GetHeader("X-Admin-Key")
	hash := os.Getenv("ADMIN_KEY_HASH")
	if key == "" || hash == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	c.Next()
}
