package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-app/internal/models"
)

// PostgresSchema creates the products table when it is missing. The table
// layout matches a hosted Supabase table with generated uuid ids.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS products (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	quantity   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS products_created_at_idx ON products (created_at DESC);
`

const productColumns = `id, name, category, price, quantity, created_at, updated_at`

type PostgresProductRepository struct {
	db       *sql.DB
	endpoint string
}

func NewPostgresProductRepository(db *sql.DB, endpoint string) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, endpoint: endpoint}
}

// EnsureSchema runs PostgresSchema.
func (r *PostgresProductRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query)
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := `INSERT INTO products (name, category, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5) RETURNING ` + productColumns

	created, err := scanProduct(r.db.QueryRowContext(ctx, query, p.Name, p.Category, p.Price, p.Quantity, now()))
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return created, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, id models.ID, patch models.ProductPatch) (models.Product, error) {
	uid, err := uuid.Parse(id.String())
	if err != nil {
		return models.Product{}, ErrProductNotFound
	}

	sets, args := updateAssignments(patch)
	args = append(args, uid)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns)

	updated, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return updated, nil
}

func updateAssignments(patch models.ProductPatch) ([]string, []any) {
	args := []any{now()}
	sets := []string{"updated_at = $1"}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	return sets, args
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id models.ID) error {
	uid, err := uuid.Parse(id.String())
	if err != nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, uid); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func (r *PostgresProductRepository) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE name ILIKE $1 OR category ILIKE $1
		ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, "%"+escapeLike(keyword)+"%")
}

func (r *PostgresProductRepository) Health(ctx context.Context) HealthStatus {
	return healthStatus("PostgreSQL", r.endpoint, r.db.PingContext(ctx))
}

func (r *PostgresProductRepository) query(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p  models.Product
		id string
	)
	if err := row.Scan(&id, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Product{}, err
	}
	p.ID = models.ID(id)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
