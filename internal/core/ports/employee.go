package ports

import (
	"context"
	"errors"

	"github.com/emberwok/takeout/internal/core/domain/employee"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrAccountLocked    = errors.New("account locked")
)

type EmployeeRepository interface {
	GetByUsername(ctx context.Context, username string) (*employee.Employee, error)
	Create(ctx context.Context, e *employee.Employee) error
}

type EmployeeService interface {
	Login(ctx context.Context, req *employee.LoginRequest) (*employee.Employee, error)
}
