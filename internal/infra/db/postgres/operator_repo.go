// File: internal/infra/db/postgres/operator_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.OperatorRepository = (*operatorRepo)(nil)

type operatorRepo struct {
	pool *pgxpool.Pool
}

func NewOperatorRepo(pool *pgxpool.Pool) repository.OperatorRepository {
	return &operatorRepo{pool: pool}
}

func (r *operatorRepo) IsOperator(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM operators WHERE email = $1);`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, model.NormalizeEmail(email)).Scan(&ok); err != nil {
		return false, fmt.Errorf("operator lookup: %w", err)
	}
	return ok, nil
}
