package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/pkg/validator"
)

// Validation installs JSON field names and the custom rules (hhmm, weekday,
// blood_pressure, ymd) on gin's binding validator. Handlers translate binding
// failures into 422 field maps themselves.
func Validation() gin.HandlerFunc {
	validator.RegisterGin()

	return func(c *gin.Context) {
		c.Next()
	}
}
