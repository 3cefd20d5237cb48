package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/laucv/gcuest-api/internal/models"
)

const questionColumns = `id, enum_descripcion, enum_disponible, creador, estado`

// QuestionRepository provides database access for questions and their
// category membership.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new instance of QuestionRepository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// FindByID returns a question by identifier, with its category ids in
// ascending order.
func (r *QuestionRepository) FindByID(ctx context.Context, id int64) (*models.Cuestion, error) {
	const query = `SELECT ` + questionColumns + ` FROM cuestiones WHERE id = $1 LIMIT 1`
	var cuestion models.Cuestion
	if err := r.db.GetContext(ctx, &cuestion, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find question by id: %w", err)
	}
	if err := r.loadCategoriaIDs(ctx, &cuestion); err != nil {
		return nil, err
	}
	return &cuestion, nil
}

// List returns every question.
func (r *QuestionRepository) List(ctx context.Context) ([]models.Cuestion, error) {
	const query = `SELECT ` + questionColumns + ` FROM cuestiones ORDER BY id`
	return r.list(ctx, query)
}

// ListByCreador returns the questions created by the given user.
func (r *QuestionRepository) ListByCreador(ctx context.Context, creadorID int64) ([]models.Cuestion, error) {
	const query = `SELECT ` + questionColumns + ` FROM cuestiones WHERE creador = $1 ORDER BY id`
	return r.list(ctx, query, creadorID)
}

func (r *QuestionRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Cuestion, error) {
	var cuestiones []models.Cuestion
	if err := r.db.SelectContext(ctx, &cuestiones, query, args...); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	const idsQuery = `SELECT cuestion_id, categoria_id FROM cuestion_has_categoria ORDER BY categoria_id`
	rows, err := r.db.QueryContext(ctx, idsQuery)
	if err != nil {
		return nil, fmt.Errorf("list category ids: %w", err)
	}
	defer rows.Close()

	byCuestion := make(map[int64][]int64)
	for rows.Next() {
		var cuestionID, categoriaID int64
		if err := rows.Scan(&cuestionID, &categoriaID); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		byCuestion[cuestionID] = append(byCuestion[cuestionID], categoriaID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list category ids: %w", err)
	}

	for i := range cuestiones {
		if ids, ok := byCuestion[cuestiones[i].ID]; ok {
			cuestiones[i].Categorias = ids
		} else {
			cuestiones[i].Categorias = []int64{}
		}
	}

	return cuestiones, nil
}

// Create inserts a new question and fills in the generated id.
func (r *QuestionRepository) Create(ctx context.Context, cuestion *models.Cuestion) error {
	const query = `INSERT INTO cuestiones (enum_descripcion, enum_disponible, creador, estado)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		cuestion.Descripcion, cuestion.Disponible, cuestion.Creador, cuestion.Estado,
	).Scan(&cuestion.ID); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a question.
func (r *QuestionRepository) Update(ctx context.Context, cuestion *models.Cuestion) error {
	const query = `UPDATE cuestiones SET enum_descripcion = :enum_descripcion,
		enum_disponible = :enum_disponible, creador = :creador, estado = :estado WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, cuestion); err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

// Delete removes a question, detaching its category membership rows
// inside the same transaction.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete question: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM cuestion_has_categoria WHERE cuestion_id = $1`, id); err != nil {
		return fmt.Errorf("detach question categories: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM cuestiones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete question: commit: %w", err)
	}
	return nil
}

// AddCategoria attaches a category to a question. Attaching a present
// pair is a no-op; the boolean reports whether a row was inserted.
func (r *QuestionRepository) AddCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error) {
	const query = `INSERT INTO cuestion_has_categoria (cuestion_id, categoria_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, cuestionID, categoriaID)
	if err != nil {
		return false, fmt.Errorf("add question category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add question category: %w", err)
	}
	return n > 0, nil
}

// RemoveCategoria detaches a category from a question. The boolean is
// false when the pair was not a member, which is a no-op, not an error.
func (r *QuestionRepository) RemoveCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error) {
	const query = `DELETE FROM cuestion_has_categoria WHERE cuestion_id = $1 AND categoria_id = $2`
	res, err := r.db.ExecContext(ctx, query, cuestionID, categoriaID)
	if err != nil {
		return false, fmt.Errorf("remove question category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove question category: %w", err)
	}
	return n > 0, nil
}

func (r *QuestionRepository) loadCategoriaIDs(ctx context.Context, cuestion *models.Cuestion) error {
	const query = `SELECT categoria_id FROM cuestion_has_categoria WHERE cuestion_id = $1 ORDER BY categoria_id`
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, cuestion.ID); err != nil {
		return fmt.Errorf("load question category ids: %w", err)
	}
	cuestion.Categorias = ids
	return nil
}
