package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// requestScope is what the HTTP layer learns about a request and hands
// down to services and the GORM logger through the context.
type requestScope struct {
	log       *zap.Logger
	requestID string
	userID    string
}

func scopeOf(ctx context.Context) requestScope {
	if s, ok := ctx.Value(ctxKey{}).(requestScope); ok {
		return s
	}
	return requestScope{}
}

// WithRequest starts a request scope whose logger carries request_id.
func WithRequest(ctx context.Context, base *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	l := base.With(zap.String("request_id", requestID))
	return context.WithValue(ctx, ctxKey{}, requestScope{log: l, requestID: requestID}), l
}

// WithUser adds the authenticated user to the scope and its logger.
func WithUser(ctx context.Context, userID string) context.Context {
	s := scopeOf(ctx)
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("user_id", userID))
	s.userID = userID
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request logger, or a no-op logger outside a request.
func FromContext(ctx context.Context) *zap.Logger {
	if l := scopeOf(ctx).log; l != nil {
		return l
	}
	return zap.NewNop()
}

func RequestIDFrom(ctx context.Context) string { return scopeOf(ctx).requestID }

func UserIDFrom(ctx context.Context) string { return scopeOf(ctx).userID }
