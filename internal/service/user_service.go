package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/laucv/gcuest-api/internal/models"
	appErrors "github.com/laucv/gcuest-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Usuario, error)
	FindByUsername(ctx context.Context, username string) (*models.Usuario, error)
	FindByEmail(ctx context.Context, email string) (*models.Usuario, error)
	List(ctx context.Context) ([]models.Usuario, error)
	Create(ctx context.Context, user *models.Usuario) error
	Update(ctx context.Context, user *models.Usuario) error
	Delete(ctx context.Context, id int64) error
}

// CreateUsuarioRequest is the payload for creating users. Username,
// email and password are mandatory; the rest defaults.
type CreateUsuarioRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Enabled   *bool  `json:"enabled"`
	IsMaestro *bool  `json:"isMaestro"`
	IsAdmin   *bool  `json:"isAdmin"`
}

// UpdateUsuarioRequest is the partial-update payload: each field is
// applied only when present.
type UpdateUsuarioRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Enabled   *bool   `json:"enabled"`
	IsMaestro *bool   `json:"isMaestro"`
	IsAdmin   *bool   `json:"isAdmin"`
}

// UserService handles user management and its authorization rules.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns every user for admins, or a one-element collection with
// the caller's own record otherwise. An empty result is a 404.
func (s *UserService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Usuario, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	if claims.IsAdmin {
		users, err := s.repo.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
		}
		if len(users) == 0 {
			return nil, appErrors.ErrNotFound
		}
		return users, nil
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return []models.Usuario{*user}, nil
}

// Get returns the user identified by id; callers may read themselves,
// admins may read anyone.
func (s *UserService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.Usuario, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !claims.IsAdmin && claims.UserID != id {
		return nil, appErrors.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return user, nil
}

// UsernameExists reports whether a username is taken; absent is a 404.
func (s *UserService) UsernameExists(ctx context.Context, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return nil
}

// Create adds a new user. Admin only; missing required fields answer
// 422, a duplicate username or email answers 400.
func (s *UserService) Create(ctx context.Context, claims *models.JWTClaims, req CreateUsuarioRequest) (*models.Usuario, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !claims.IsAdmin {
		return nil, appErrors.ErrForbidden
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnprocessableEntity.Code, appErrors.ErrUnprocessableEntity.Message)
	}

	if err := s.checkUsernameFree(ctx, req.Username); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	isMaestro := req.IsMaestro != nil && *req.IsMaestro
	isAdmin := req.IsAdmin != nil && *req.IsAdmin

	user, err := models.NewUsuario(req.Username, req.Email, req.Password, enabled, isMaestro, isAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	s.logger.Info("user created",
		zap.Int64("uid", claims.UserID), zap.Int64("id", user.ID), zap.String("username", user.Username))

	return user, nil
}

// Update applies a partial update to the user identified by id. Callers
// may update themselves, admins anyone; only admins may touch the
// maestro and admin flags (non-admin payload flags are ignored).
func (s *UserService) Update(ctx context.Context, claims *models.JWTClaims, id int64, req UpdateUsuarioRequest) (*models.Usuario, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !claims.IsAdmin && claims.UserID != id {
		return nil, appErrors.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	if req.Username != nil {
		if err := s.checkUsernameFree(ctx, *req.Username); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}

	if req.Email != nil {
		if err := s.checkEmailFree(ctx, *req.Email); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}

	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
		}
	}

	if req.Enabled != nil {
		user.Enabled = *req.Enabled
	}

	if claims.IsAdmin && req.IsMaestro != nil {
		user.IsMaestro = *req.IsMaestro
	}
	if claims.IsAdmin && req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	return user, nil
}

// Delete removes the user identified by id; their questions are
// detached, not deleted. Callers may delete themselves, admins anyone.
func (s *UserService) Delete(ctx context.Context, claims *models.JWTClaims, id int64) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if !claims.IsAdmin && claims.UserID != id {
		return appErrors.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	s.logger.Info("user deleted", zap.Int64("uid", claims.UserID), zap.Int64("id", id))

	return nil
}

// The store's unique constraints remain the authoritative guard; these
// lookups give the friendly 400 before the insert races.
func (s *UserService) checkUsernameFree(ctx context.Context, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return appErrors.ErrBadRequest
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return appErrors.ErrBadRequest
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return nil
}
