package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// allowedHeaders 는 브라우저 클라이언트가 보낼 수 있는 요청 헤더의 고정 allow-list 이다.
var allowedHeaders = []string{
	"X-CSRF-Token",
	"X-Requested-With",
	"Accept",
	"Accept-Version",
	"Content-Length",
	"Content-MD5",
	"Content-Type",
	"Date",
	"X-Api-Version",
	"X-Request-Id",
}

// CORSMiddleware 는 릴레이의 cross-origin 정책을 적용한다.
// 클라이언트는 릴레이와 다른 origin 에서 서빙될 수 있으므로 origin 은 와일드카드다.
// preflight(OPTIONS) 요청은 항상 200 과 빈 바디로 끝난다.
func CORSMiddleware() gin.HandlerFunc {
	policy := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: allowedHeaders,
	})

	return func(c *gin.Context) {
		policy.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
