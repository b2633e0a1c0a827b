package chatgate

import "context"

type contextKey uint8

const (
	clientIPKey contextKey = iota
)

// WithClientIP describes the withclientip operation and its observable behavior.
//
// WithClientIP may return an error when input validation, dependency calls, or security checks fail.
// WithClientIP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext describes the clientipfromcontext operation and its observable behavior.
//
// ClientIPFromContext may return an error when input validation, dependency calls, or security checks fail.
// ClientIPFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
