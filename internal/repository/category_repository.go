package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/laucv/gcuest-api/internal/models"
)

const categoryColumns = `id, nombre_categoria, disponible`

// CategoryRepository provides database access for categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByID returns a category by identifier with its question ids.
func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*models.Categoria, error) {
	const query = `SELECT ` + categoryColumns + ` FROM categorias WHERE id = $1 LIMIT 1`
	var categoria models.Categoria
	if err := r.db.GetContext(ctx, &categoria, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by id: %w", err)
	}

	const idsQuery = `SELECT cuestion_id FROM cuestion_has_categoria WHERE categoria_id = $1 ORDER BY cuestion_id`
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, idsQuery, id); err != nil {
		return nil, fmt.Errorf("load category question ids: %w", err)
	}
	categoria.Cuestiones = ids

	return &categoria, nil
}

// List returns every category.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Categoria, error) {
	const query = `SELECT ` + categoryColumns + ` FROM categorias ORDER BY id`
	var categorias []models.Categoria
	if err := r.db.SelectContext(ctx, &categorias, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for i := range categorias {
		categorias[i].Cuestiones = []int64{}
	}
	return categorias, nil
}

// Create inserts a new category and fills in the generated id.
func (r *CategoryRepository) Create(ctx context.Context, categoria *models.Categoria) error {
	const query = `INSERT INTO categorias (nombre_categoria, disponible) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, categoria.Nombre, categoria.Disponible).Scan(&categoria.ID); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a category.
func (r *CategoryRepository) Update(ctx context.Context, categoria *models.Categoria) error {
	const query = `UPDATE categorias SET nombre_categoria = :nombre_categoria,
		disponible = :disponible WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, categoria); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category; membership rows go with it.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categorias WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
