package adapters

import (
	"github.com/gin-gonic/gin"
)

// NewGinTransport creates an in-memory transport over a Gin engine
func NewGinTransport(engine *gin.Engine) *HandlerTransport {
	return NewHandlerTransport(engine)
}
