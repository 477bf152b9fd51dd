package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
)

type tokensRepo struct {
	db dbtx
}

const tokenColumns = `id, client_id, access_token_hash, refresh_token_hash, token_type, scope, expires_in, created_at, revoked_at`

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	var revoked sql.NullInt64
	if t.RevokedAt != nil {
		revoked = sql.NullInt64{Int64: t.RevokedAt.Unix(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (`+tokenColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.ClientID,
		t.AccessTokenHash,
		mapStringNull(t.RefreshTokenHash),
		t.TokenType,
		t.Scope,
		int64(t.ExpiresIn/time.Second),
		t.CreatedAt.Unix(),
		revoked,
	)
	return mapConstraint(err)
}

func (r *tokensRepo) GetTokenByAccessHash(ctx context.Context, hash string) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE access_token_hash = ?`, hash)

	var (
		t         domain.Token
		refresh   sql.NullString
		expiresIn int64
		created   int64
		revoked   sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.ClientID, &t.AccessTokenHash, &refresh,
		&t.TokenType, &t.Scope, &expiresIn, &created, &revoked)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}

	t.RefreshTokenHash = mapNullString(refresh)
	t.ExpiresIn = time.Duration(expiresIn) * time.Second
	t.CreatedAt = time.Unix(created, 0).UTC()
	if revoked.Valid {
		at := time.Unix(revoked.Int64, 0).UTC()
		t.RevokedAt = &at
	}
	return t, nil
}

func (r *tokensRepo) CountTokens(ctx context.Context, now time.Time) (store.TokenCounts, error) {
	var c store.TokenCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN created_at + expires_in < ? THEN 1 ELSE 0 END), 0) FROM tokens`,
		now.Unix(),
	).Scan(&c.Total, &c.Expired)
	return c, err
}
