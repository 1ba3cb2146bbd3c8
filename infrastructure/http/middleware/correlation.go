package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/examgate/examgate/infrastructure/service/logger"
)

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID tags every request and response with a correlation ID so log
// lines across the call can be stitched together. Incoming IDs are reused.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = uuid.NewString()
		}

		w.Header().Set(CorrelationIDHeader, cid)
		ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
