package middleware

import (
	"net/mail"
	"strings"

	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// EmailHeader 终端用户身份头
const EmailHeader = "X-User-Email"

// UserEmail 读取终端用户邮箱，先看请求头再看 email 查询参数
func UserEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader(EmailHeader))
		if email == "" {
			email = strings.TrimSpace(c.Query("email"))
		}
		if email == "" {
			utils.Unauthorized(c, "缺少用户邮箱")
			c.Abort()
			return
		}
		addr, err := mail.ParseAddress(email)
		if err != nil {
			utils.BadRequest(c, "邮箱格式无效")
			c.Abort()
			return
		}

		// "Ana <ana@x.com>" 只保留地址部分
		c.Set("email", strings.ToLower(addr.Address))
		c.Next()
	}
}

// GetEmail 从上下文获取用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString("email")
}
