package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/employee"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/infrastructure/db"
)

type EmployeeRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewEmployeeRepository(database *db.Database, logger *logrus.Logger) ports.EmployeeRepository {
	return &EmployeeRepository{db: database, logger: logger}
}

func (r *EmployeeRepository) GetByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	var e employee.Employee
	query := `
		SELECT id, username, name, password, phone, status, created_at, updated_at
		FROM employee
		WHERE username = $1`
	if err := r.db.DB.GetContext(ctx, &e, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get employee %q: %w", username, err)
	}
	return &e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	query := `
		INSERT INTO employee (username, name, password, phone, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.DB.QueryRowxContext(ctx, query,
		e.Username, e.Name, e.Password, e.Phone, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}
