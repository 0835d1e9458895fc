package middleware

import (
	"strings"

	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

const adminClaimsKey = "admin_claims"

// AdminAuth 运营后台认证，要求 Authorization: Bearer <token>
func AdminAuth(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			utils.Unauthorized(c, "未认证")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			utils.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set(adminClaimsKey, claims)
		c.Next()
	}
}

func adminClaims(c *gin.Context) (*utils.JWTClaims, bool) {
	v, ok := c.Get(adminClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.JWTClaims)
	return claims, ok
}

// GetAdminID 当前运营账号ID
func GetAdminID(c *gin.Context) (uint, bool) {
	claims, ok := adminClaims(c)
	if !ok {
		return 0, false
	}
	return claims.AdminID, true
}

// GetUsername 当前运营账号用户名
func GetUsername(c *gin.Context) (string, bool) {
	claims, ok := adminClaims(c)
	if !ok {
		return "", false
	}
	return claims.Username, true
}
