package customers

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/clientes-service/internal/db"
	"github.com/sangkips/clientes-service/internal/domains/customers/models"
)

// memoryRepository behaves like the clientes table: serial ids, unique email
// and cpf, exact-match credential lookup and id ordering on list.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int32
	rows   []models.Cliente
	now    func() time.Time
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{now: time.Now}
}

func (m *memoryRepository) factory() func(models.DBTX) Repository {
	return func(models.DBTX) Repository { return m }
}

func (m *memoryRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) TaxIDExists(ctx context.Context, taxID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Cpf == taxID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) CreateCliente(ctx context.Context, params models.CreateClienteParams) (models.CreateClienteRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == params.Email {
			return models.CreateClienteRow{}, &pgconn.PgError{Code: uniqueViolation, ConstraintName: db.EmailUniqueConstraint}
		}
		if row.Cpf == params.Cpf {
			return models.CreateClienteRow{}, &pgconn.PgError{Code: uniqueViolation, ConstraintName: db.TaxIDUniqueConstraint}
		}
	}

	m.nextID++
	created := sql.NullTime{Time: m.now().UTC().Truncate(time.Second), Valid: true}
	m.rows = append(m.rows, models.Cliente{
		ID:        m.nextID,
		Nome:      params.Nome,
		Cpf:       params.Cpf,
		Endereco:  params.Endereco,
		Email:     params.Email,
		Password:  params.Password,
		CreatedAt: created,
	})
	return models.CreateClienteRow{ID: m.nextID, CreatedAt: created}, nil
}

func (m *memoryRepository) GetClienteByCredentials(ctx context.Context, params models.GetClienteByCredentialsParams) (models.GetClienteByCredentialsRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == params.Email && row.Password == params.Password {
			return models.GetClienteByCredentialsRow{ID: row.ID, Nome: row.Nome}, nil
		}
	}
	return models.GetClienteByCredentialsRow{}, sql.ErrNoRows
}

func (m *memoryRepository) ListClientes(ctx context.Context) ([]models.ListClientesRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]models.ListClientesRow, 0, len(m.rows))
	for _, row := range m.rows {
		items = append(items, models.ListClientesRow{
			ID:        row.ID,
			Nome:      row.Nome,
			Cpf:       row.Cpf,
			Endereco:  row.Endereco,
			Email:     row.Email,
			CreatedAt: row.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

var _ Repository = (*memoryRepository)(nil)
