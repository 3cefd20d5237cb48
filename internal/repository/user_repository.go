package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/laucv/gcuest-api/internal/models"
)

const userColumns = `id, username, email, password, enabled, master, admin`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier, including the ids of the
// questions the user created.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.Usuario, error) {
	const query = `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1 LIMIT 1`
	var user models.Usuario
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if err := r.loadCuestionIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.Usuario, error) {
	const query = `SELECT ` + userColumns + ` FROM usuarios WHERE username = $1 LIMIT 1`
	var user models.Usuario
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	if err := r.loadCuestionIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	const query = `SELECT ` + userColumns + ` FROM usuarios WHERE email = $1 LIMIT 1`
	var user models.Usuario
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// List returns every user with their question ids.
func (r *UserRepository) List(ctx context.Context) ([]models.Usuario, error) {
	const query = `SELECT ` + userColumns + ` FROM usuarios ORDER BY id`
	var users []models.Usuario
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	const idsQuery = `SELECT id, creador FROM cuestiones WHERE creador IS NOT NULL ORDER BY id`
	rows, err := r.db.QueryContext(ctx, idsQuery)
	if err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}
	defer rows.Close()

	byCreator := make(map[int64][]int64)
	for rows.Next() {
		var cuestionID, creador int64
		if err := rows.Scan(&cuestionID, &creador); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		byCreator[creador] = append(byCreator[creador], cuestionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}

	for i := range users {
		if ids, ok := byCreator[users[i].ID]; ok {
			users[i].Cuestiones = ids
		} else {
			users[i].Cuestiones = []int64{}
		}
	}

	return users, nil
}

// Create inserts a new user and fills in the generated id.
func (r *UserRepository) Create(ctx context.Context, user *models.Usuario) error {
	const query = `INSERT INTO usuarios (username, email, password, enabled, master, admin)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Password, user.Enabled, user.IsMaestro, user.IsAdmin,
	).Scan(&user.ID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.Usuario) error {
	const query = `UPDATE usuarios SET username = :username, email = :email, password = :password,
		enabled = :enabled, master = :master, admin = :admin WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Delete removes a user. The user's questions are detached, not
// deleted: their creador column is nulled inside the same transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete user: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE cuestiones SET creador = NULL WHERE creador = $1`, id); err != nil {
		return fmt.Errorf("detach user questions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete user: commit: %w", err)
	}
	return nil
}

func (r *UserRepository) loadCuestionIDs(ctx context.Context, user *models.Usuario) error {
	const query = `SELECT id FROM cuestiones WHERE creador = $1 ORDER BY id`
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, user.ID); err != nil {
		return fmt.Errorf("load user question ids: %w", err)
	}
	user.Cuestiones = ids
	return nil
}
