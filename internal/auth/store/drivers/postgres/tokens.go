package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
)

type tokensRepo struct {
	q querier
}

const tokenColumns = `id, client_id, access_token_hash, refresh_token_hash, token_type, scope, expires_in, created_at, revoked_at`

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	var refresh *string
	if t.RefreshTokenHash != "" {
		refresh = &t.RefreshTokenHash
	}
	var revoked *int64
	if t.RevokedAt != nil {
		at := t.RevokedAt.Unix()
		revoked = &at
	}

	_, err := r.q.Exec(ctx,
		`INSERT INTO tokens (`+tokenColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.ClientID, t.AccessTokenHash, refresh, t.TokenType, t.Scope,
		int64(t.ExpiresIn/time.Second), t.CreatedAt.Unix(), revoked,
	)
	return mapConstraint(err)
}

func (r *tokensRepo) GetTokenByAccessHash(ctx context.Context, hash string) (domain.Token, error) {
	var (
		t         domain.Token
		refresh   *string
		expiresIn int64
		created   int64
		revoked   *int64
	)
	err := r.q.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE access_token_hash = $1`, hash).
		Scan(&t.ID, &t.ClientID, &t.AccessTokenHash, &refresh, &t.TokenType, &t.Scope, &expiresIn, &created, &revoked)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}

	if refresh != nil {
		t.RefreshTokenHash = *refresh
	}
	t.ExpiresIn = time.Duration(expiresIn) * time.Second
	t.CreatedAt = time.Unix(created, 0).UTC()
	if revoked != nil {
		at := time.Unix(*revoked, 0).UTC()
		t.RevokedAt = &at
	}
	return t, nil
}

func (r *tokensRepo) CountTokens(ctx context.Context, now time.Time) (store.TokenCounts, error) {
	var c store.TokenCounts
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at + expires_in < $1) FROM tokens`,
		now.Unix(),
	).Scan(&c.Total, &c.Expired)
	return c, err
}
