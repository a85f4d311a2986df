package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/logger"
)

// Recovery returns middleware that recovers from panics, logs the stack and
// answers with an INTERNAL_ERROR body.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("Panic recovered", map[string]interface{}{
					"error":  fmt.Sprintf("%v", rec),
					"stack":  string(debug.Stack()),
					"path":   r.URL.Path,
					"method": r.Method,
				})
				appErr := apperrors.Internal(fmt.Errorf("panic: %v", rec))
				body, _ := json.Marshal(appErr.ToResponse())
				writeJSON(w, appErr.HTTPStatus, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
