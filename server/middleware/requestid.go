package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/validation"
)

// HeaderRequestID carries the request id on requests and responses.
const HeaderRequestID = "X-Request-Id"

// RequestID tags every request with an id. A caller-supplied X-Request-Id is
// kept when it is a UUID; anything else is replaced with a fresh one. The id
// is echoed in the response, written back to the request header and stored
// in the request context for the logger.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" || validation.New().OptionalUUID(HeaderRequestID, id).HasErrors() {
				id = uuid.New().String()
			}
			r.Header.Set(HeaderRequestID, id)
			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
		})
	}
}
