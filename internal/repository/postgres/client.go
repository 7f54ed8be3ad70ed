package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	query := `SELECT client_id, first_name, last_name FROM client ORDER BY last_name, first_name, client_id`
	clients := []domain.Client{}
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, classifyError("list clients", err)
	}
	return clients, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	query := `SELECT client_id, first_name, last_name FROM client WHERE client_id = $1`
	client := &domain.Client{}
	if err := r.db.GetContext(ctx, client, query, id); err != nil {
		return nil, notFoundOr("get client", err, "client", id)
	}
	return client, nil
}
