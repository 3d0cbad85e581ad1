package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	q Executor
}

func NewCustomerRepository(q Executor) *CustomerRepository {
	return &CustomerRepository{q: q}
}

func (r *CustomerRepository) FindCustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT customer_id, first_name, last_name, email FROM customers WHERE customer_id = $1`

	var c domain.Customer
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewCustomerNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &c, nil
}
