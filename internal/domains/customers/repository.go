package customers

import (
	"context"

	"github.com/sangkips/clientes-service/internal/domains/customers/models"
)

type Repository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	TaxIDExists(ctx context.Context, taxID string) (bool, error)
	CreateCliente(ctx context.Context, params models.CreateClienteParams) (models.CreateClienteRow, error)
	GetClienteByCredentials(ctx context.Context, params models.GetClienteByCredentialsParams) (models.GetClienteByCredentialsRow, error)
	ListClientes(ctx context.Context) ([]models.ListClientesRow, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.q.EmailExists(ctx, email)
}

func (r *repository) TaxIDExists(ctx context.Context, taxID string) (bool, error) {
	return r.q.TaxIDExists(ctx, taxID)
}

func (r *repository) CreateCliente(ctx context.Context, params models.CreateClienteParams) (models.CreateClienteRow, error) {
	return r.q.CreateCliente(ctx, params)
}

func (r *repository) GetClienteByCredentials(ctx context.Context, params models.GetClienteByCredentialsParams) (models.GetClienteByCredentialsRow, error) {
	return r.q.GetClienteByCredentials(ctx, params)
}

func (r *repository) ListClientes(ctx context.Context) ([]models.ListClientesRow, error) {
	return r.q.ListClientes(ctx)
}
