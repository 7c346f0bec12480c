package adapters

import (
	"github.com/labstack/echo/v4"
)

// NewEchoTransport creates an in-memory transport over an Echo instance
func NewEchoTransport(e *echo.Echo) *HandlerTransport {
	return NewHandlerTransport(e)
}
