package httputil

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const (
	HeaderRequestID = "X-Request-ID"

	ctxKeyRequestID ctxKey = "request_id"
)

// MiddlewareRequestID — берёт X-Request-ID из запроса или генерирует новый,
// кладёт его в контекст и возвращает клиенту тем же заголовком.
func MiddlewareRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), ctxKeyRequestID, id),
		))
	})
}

// RequestIDFromCtx — достать request id из контекста; пустая строка,
// если запрос прошёл мимо MiddlewareRequestID.
func RequestIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}
