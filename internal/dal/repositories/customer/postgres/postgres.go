package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appareldesk/storefront/internal/dal/postgres"
	"github.com/appareldesk/storefront/internal/service/models/customer"
	"github.com/jackc/pgx/v5"
)

// CustomerDal represents customer data access layer model.
type CustomerDal struct {
	Id        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// ToModel converts CustomerDal to service layer Customer model.
func (c *CustomerDal) ToModel() *customer.Customer {
	return &customer.Customer{
		ID:        c.Id,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

// PostgresCustomerRepository represents a Postgres customer repository.
type PostgresCustomerRepository struct {
	conn postgres.Conn
}

// NewPostgresCustomerRepository creates a new Postgres customer repository.
func NewPostgresCustomerRepository(conn postgres.Conn) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		conn: conn,
	}
}

// GetByID retrieves a customer profile by id.
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	const query = `
		SELECT id, name, email, phone, address, created_at
		FROM customers
		WHERE id = $1
	`

	var dal CustomerDal
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&dal.Id,
		&dal.Name,
		&dal.Email,
		&dal.Phone,
		&dal.Address,
		&dal.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customer.ErrInvalidCustomer
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}

	return dal.ToModel(), nil
}
