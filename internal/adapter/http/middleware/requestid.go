package middleware

import (
	"net/http"

	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to the context for log correlation,
// honoring one supplied by the client.
func (h *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := wrap.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
