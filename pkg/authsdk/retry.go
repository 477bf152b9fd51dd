package authsdk

import "context"

// RetryOnUnauthorized runs op. When op fails with a 401 it calls refresh
// once and runs op a second time, returning that result whatever it is. A
// failed refresh is returned instead.
func RetryOnUnauthorized[T any](
	ctx context.Context,
	op func(ctx context.Context) (T, error),
	refresh func(ctx context.Context) error,
) (T, error) {
	res, err := op(ctx)
	if err == nil || !IsUnauthorized(err) {
		return res, err
	}

	if err := refresh(ctx); err != nil {
		var zero T
		return zero, err
	}
	return op(ctx)
}
