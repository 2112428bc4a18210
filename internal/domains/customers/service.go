package customers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/clientes-service/internal/domains/customers/models"
)

// ConnectionGuard hands out exclusive access to the store connection.
type ConnectionGuard interface {
	WithConnection(ctx context.Context, op func(ctx context.Context, conn models.DBTX) error) error
}

// EventPublisher announces new registrations
type EventPublisher interface {
	PublishCustomerRegistered(customerID int32, name, email string) error
}

type Service struct {
	guard   ConnectionGuard
	newRepo func(models.DBTX) Repository
	events  EventPublisher
}

// NewService builds a Service. events may be nil to disable registration events.
func NewService(guard ConnectionGuard, newRepo func(models.DBTX) Repository, events EventPublisher) *Service {
	return &Service{
		guard:   guard,
		newRepo: newRepo,
		events:  events,
	}
}

// RegisterRequest carries the values as sent. Empty strings are stored as-is.
type RegisterRequest struct {
	Name     string
	TaxID    string
	Address  string
	Email    string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

type RegisterResult struct {
	ID        int32
	CreatedAt time.Time
}

type LoginResult struct {
	ID   int32
	Name string
}

// Register inserts a new customer. The email is checked before the tax id,
// so a request colliding on both reports ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var result RegisterResult

	err := s.guard.WithConnection(ctx, func(ctx context.Context, conn models.DBTX) error {
		repo := s.newRepo(conn)

		exists, err := repo.EmailExists(ctx, req.Email)
		if err != nil {
			return &StoreError{Op: "check email", Err: err}
		}
		if exists {
			return ErrDuplicateEmail
		}

		exists, err = repo.TaxIDExists(ctx, req.TaxID)
		if err != nil {
			return &StoreError{Op: "check tax id", Err: err}
		}
		if exists {
			return ErrDuplicateTaxID
		}

		row, err := repo.CreateCliente(ctx, models.CreateClienteParams{
			Nome:     req.Name,
			Cpf:      req.TaxID,
			Endereco: req.Address,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			if dup := duplicateFromConstraint(err); dup != nil {
				return dup
			}
			return &StoreError{Op: "insert customer", Err: err}
		}

		result = RegisterResult{ID: row.ID, CreatedAt: row.CreatedAt.Time}
		return nil
	})
	if err != nil {
		return nil, classify("register customer", err)
	}

	log.Info().Int32("customer_id", result.ID).Msg("customer registered")
	s.publishRegistered(result.ID, req.Name, req.Email)

	return &result, nil
}

// Login matches email and password exactly. Unknown email and wrong password
// both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var result LoginResult

	err := s.guard.WithConnection(ctx, func(ctx context.Context, conn models.DBTX) error {
		row, err := s.newRepo(conn).GetClienteByCredentials(ctx, models.GetClienteByCredentialsParams{
			Email:    req.Email,
			Password: req.Password,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return &StoreError{Op: "verify credentials", Err: err}
		}

		result = LoginResult{ID: row.ID, Name: row.Nome}
		return nil
	})
	if err != nil {
		return nil, classify("login", err)
	}

	return &result, nil
}

// List returns every customer ordered by id. Passwords are never selected.
func (s *Service) List(ctx context.Context) ([]models.ListClientesRow, error) {
	var rows []models.ListClientesRow

	err := s.guard.WithConnection(ctx, func(ctx context.Context, conn models.DBTX) error {
		var err error
		rows, err = s.newRepo(conn).ListClientes(ctx)
		if err != nil {
			return &StoreError{Op: "list customers", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, classify("list customers", err)
	}

	return rows, nil
}

// publishRegistered runs after the connection slot is released; a failed
// publish is logged and the registration still stands.
func (s *Service) publishRegistered(id int32, name, email string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCustomerRegistered(id, name, email); err != nil {
		log.Warn().Err(err).Int32("customer_id", id).Msg("failed to publish customer registered event")
	}
}
