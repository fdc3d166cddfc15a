package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/employee"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/utils"
)

// EmployeeService verifies staff credentials. Session/token issuance is the
// caller's concern.
type EmployeeService struct {
	repo   ports.EmployeeRepository
	logger *logrus.Logger
}

func NewEmployeeService(repo ports.EmployeeRepository, logger *logrus.Logger) ports.EmployeeService {
	return &EmployeeService{repo: repo, logger: logger}
}

func (s *EmployeeService) Login(ctx context.Context, req *employee.LoginRequest) (*employee.Employee, error) {
	e, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ports.ErrAccountNotFound) {
			s.logger.WithField("username", req.Username).Info("login attempt for unknown account")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, e.Password) {
		s.logger.WithField("username", req.Username).Info("login attempt with wrong password")
		return nil, ports.ErrPasswordMismatch
	}
	if e.Status == employee.StatusDisabled {
		return nil, ports.ErrAccountLocked
	}
	return e, nil
}
