package users

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/usersync/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, in CreateInput) (User, error)
	UpdateUser(ctx context.Context, id int64, in UpdateInput) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return &Service{repo: repo, validate: v}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns a single user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser validates and stores a new user.
func (s *Service) CreateUser(ctx context.Context, in CreateInput) (User, error) {
	if in.Name == "" || in.Email == "" {
		return User{}, httpx.Invalid(httpx.MessageRequired)
	}
	if err := s.check(in); err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, in)
}

// UpdateUser applies the non-empty fields of in to the stored user.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateInput) (User, error) {
	if err := s.check(in); err != nil {
		return User{}, err
	}
	return s.repo.UpdateUser(ctx, id, in)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}

func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("users: validate: %w", err)
	}
	first := fieldErrs[0]
	switch first.Tag() {
	case "required":
		return httpx.Invalid(httpx.MessageRequired)
	case "max":
		return httpx.Invalid(fmt.Sprintf("%s must be at most %s characters", first.Field(), first.Param()))
	default:
		return httpx.Invalid(fmt.Sprintf("%s is invalid", first.Field()))
	}
}
