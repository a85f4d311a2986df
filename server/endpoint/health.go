package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bg/observability"
	"github.com/kbukum/bg/version"
)

// Health returns a handler that reports service health including component
// statuses. A down component turns the response into a 503.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.CheckAll(c.Request.Context(), serviceName, version.GetShortVersion(), checkers...)

		httpStatus := http.StatusOK
		if !sh.IsUp() {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, sh)
	}
}
