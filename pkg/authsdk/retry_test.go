package authsdk

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

var errUnauthorized = NewOAuth2Error(http.StatusUnauthorized, ErrorCodeInvalidToken, "expired")

func TestRetryOnUnauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		results     []error
		refreshErr  error
		wantErr     error
		wantOps     int
		wantRefresh int
	}{
		{"success first time", []error{nil}, nil, nil, 1, 0},
		{"retries once after 401", []error{errUnauthorized, nil}, nil, nil, 2, 1},
		{"second 401 is returned", []error{errUnauthorized, errUnauthorized}, nil, errUnauthorized, 2, 1},
		{"other errors are not retried", []error{ErrServerError}, nil, ErrServerError, 1, 0},
		{"refresh failure is returned", []error{errUnauthorized}, ErrInvalidClient, ErrInvalidClient, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ops, refreshes int
			op := func(context.Context) (int, error) {
				err := tt.results[ops]
				ops++
				return ops, err
			}
			refresh := func(context.Context) error {
				refreshes++
				return tt.refreshErr
			}

			got, err := RetryOnUnauthorized(context.Background(), op, refresh)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, ops, got)
			}
			require.Equal(t, tt.wantOps, ops)
			require.Equal(t, tt.wantRefresh, refreshes)
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	require.True(t, IsUnauthorized(errUnauthorized))
	require.True(t, IsUnauthorized(errors.Join(errors.New("wrapped"), errUnauthorized)))
	require.False(t, IsUnauthorized(ErrInvalidClient))
	require.False(t, IsUnauthorized(errors.New("plain")))
	require.False(t, IsUnauthorized(nil))
}
