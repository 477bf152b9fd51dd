package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/jackc/pgx/v5"
)

type clientsRepo struct {
	q querier
}

const clientColumns = `client_id, secret_hash, grant_type, token_endpoint_auth_method, created_at`

func (r *clientsRepo) GetClientByID(ctx context.Context, clientID string) (domain.Client, error) {
	row := r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE client_id = $1`, clientID)

	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		c.ClientID, c.SecretHash, c.GrantType, c.TokenEndpointAuthMethod, c.CreatedAt.Unix(),
	)
	return mapConstraint(err)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY client_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CountClients(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

func scanClient(row pgx.Row) (domain.Client, error) {
	var (
		c       domain.Client
		created int64
	)
	if err := row.Scan(&c.ClientID, &c.SecretHash, &c.GrantType, &c.TokenEndpointAuthMethod, &created); err != nil {
		return domain.Client{}, err
	}
	c.CreatedAt = time.Unix(created, 0).UTC()
	return c, nil
}
