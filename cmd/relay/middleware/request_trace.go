package middleware

import (
	"github.com/gin-gonic/gin"

	"chat-relay/trace"
)

// RequestTraceMiddleware 는 요청마다 X-Request-Id 를 부여하고
// 컨텍스트에 트레이싱 정보를 심는다. 클라이언트가 보낸 값이 있으면 이어받는다.
func RequestTraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = trace.GenerateID()
		}

		ctx := trace.WithRequestAndSpan(c.Request.Context(), requestID, 0)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-Id", requestID)

		c.Next()
	}
}
