package domain

import "context"

// The hosting environment supplies caller identity per call through the
// context. The ledger core never authenticates; it only authorizes.

type callerKey struct{}

// WithCaller returns a context carrying the calling account.
func WithCaller(ctx context.Context, account AccountID) context.Context {
	return context.WithValue(ctx, callerKey{}, account)
}

// CallerFrom extracts the calling account. When the host supplied none the
// zero account is returned, which every authorization predicate rejects.
func CallerFrom(ctx context.Context) AccountID {
	if account, ok := ctx.Value(callerKey{}).(AccountID); ok {
		return account
	}
	return ZeroAccount
}
