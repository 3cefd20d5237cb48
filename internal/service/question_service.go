package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/laucv/gcuest-api/internal/models"
	appErrors "github.com/laucv/gcuest-api/pkg/errors"
)

type questionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Cuestion, error)
	List(ctx context.Context) ([]models.Cuestion, error)
	ListByCreador(ctx context.Context, creadorID int64) ([]models.Cuestion, error)
	Create(ctx context.Context, cuestion *models.Cuestion) error
	Update(ctx context.Context, cuestion *models.Cuestion) error
	Delete(ctx context.Context, id int64) error
	AddCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error)
	RemoveCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error)
}

type questionUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Usuario, error)
}

type questionCategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Categoria, error)
}

// CreateCuestionRequest is the payload for creating questions.
type CreateCuestionRequest struct {
	EnunciadoDescripcion *string `json:"enunciadoDescripcion"`
	EnunciadoDisponible  *bool   `json:"enunciadoDisponible"`
	Creador              *int64  `json:"creador"`
}

// UpdateCuestionRequest is the partial-update payload: each field is
// applied only when present. An unrecognized estado value is ignored.
type UpdateCuestionRequest struct {
	EnunciadoDescripcion *string `json:"enunciadoDescripcion"`
	EnunciadoDisponible  *bool   `json:"enunciadoDisponible"`
	Creador              *int64  `json:"creador"`
	Estado               *string `json:"estado"`
}

// QuestionService handles question management and its authorization
// rules.
type QuestionService struct {
	repo       questionRepository
	users      questionUserRepository
	categories questionCategoryRepository
	logger     *zap.Logger
}

// NewQuestionService creates an instance of QuestionService.
func NewQuestionService(repo questionRepository, users questionUserRepository, categories questionCategoryRepository, logger *zap.Logger) *QuestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{repo: repo, users: users, categories: categories, logger: logger}
}

// List returns every question for admins; other callers see the
// questions they created. An empty result is a 404.
func (s *QuestionService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Cuestion, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	var (
		cuestiones []models.Cuestion
		err        error
	)
	if claims.IsAdmin {
		cuestiones, err = s.repo.List(ctx)
	} else {
		cuestiones, err = s.repo.ListByCreador(ctx, claims.UserID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	if len(cuestiones) == 0 {
		return nil, appErrors.ErrNotFound
	}

	return cuestiones, nil
}

// Get returns the question identified by id; any authenticated caller
// may read it.
func (s *QuestionService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.Cuestion, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	cuestion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return cuestion, nil
}

// Create adds a new question. Maestro only; a creador referencing a
// missing or non-maestro user answers 409. The state always starts
// cerrada.
func (s *QuestionService) Create(ctx context.Context, claims *models.JWTClaims, req CreateCuestionRequest) (*models.Cuestion, error) {
	if err := s.requireMaestro(ctx, claims); err != nil {
		return nil, err
	}

	var creador *models.Usuario
	if req.Creador != nil {
		var err error
		creador, err = s.resolveCreador(ctx, *req.Creador)
		if err != nil {
			return nil, err
		}
	}

	disponible := req.EnunciadoDisponible != nil && *req.EnunciadoDisponible

	cuestion, err := models.NewCuestion(req.EnunciadoDescripcion, creador, disponible)
	if err != nil {
		if errors.Is(err, models.ErrCreadorNoMaestro) {
			return nil, appErrors.ErrConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	if err := s.repo.Create(ctx, cuestion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	s.logger.Info("question created", zap.Int64("uid", claims.UserID), zap.Int64("id", cuestion.ID))

	return cuestion, nil
}

// Update applies a partial update to the question identified by id.
// Maestro only; the estado field transitions the state machine only on
// an exact literal match.
func (s *QuestionService) Update(ctx context.Context, claims *models.JWTClaims, id int64, req UpdateCuestionRequest) (*models.Cuestion, error) {
	if err := s.requireMaestro(ctx, claims); err != nil {
		return nil, err
	}

	cuestion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	if req.EnunciadoDescripcion != nil {
		cuestion.Descripcion = req.EnunciadoDescripcion
	}

	if req.EnunciadoDisponible != nil {
		cuestion.Disponible = *req.EnunciadoDisponible
	}

	if req.Creador != nil {
		creador, err := s.resolveCreador(ctx, *req.Creador)
		if err != nil {
			return nil, err
		}
		if err := cuestion.SetCreador(creador); err != nil {
			return nil, appErrors.ErrConflict
		}
	}

	if req.Estado != nil {
		cuestion.ApplyEstado(*req.Estado)
	}

	if err := s.repo.Update(ctx, cuestion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	return cuestion, nil
}

// Delete removes the question identified by id, detaching its category
// membership. Maestro only.
func (s *QuestionService) Delete(ctx context.Context, claims *models.JWTClaims, id int64) error {
	if err := s.requireMaestro(ctx, claims); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}

	s.logger.Info("question deleted", zap.Int64("uid", claims.UserID), zap.Int64("id", id))

	return nil
}

// AttachCategoria adds a question to a category. Idempotent: the
// boolean is false when the pair was already a member.
func (s *QuestionService) AttachCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error) {
	if err := s.checkPairExists(ctx, cuestionID, categoriaID); err != nil {
		return false, err
	}
	added, err := s.repo.AddCategoria(ctx, cuestionID, categoriaID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return added, nil
}

// DetachCategoria removes a question from a category. Removing an
// absent pair reports false, never an error.
func (s *QuestionService) DetachCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error) {
	if err := s.checkPairExists(ctx, cuestionID, categoriaID); err != nil {
		return false, err
	}
	removed, err := s.repo.RemoveCategoria(ctx, cuestionID, categoriaID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return removed, nil
}

// The maestro flag is not embedded in the token, so the acting user is
// resolved from the store.
func (s *QuestionService) requireMaestro(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	actor, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrUnauthorized
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	if !actor.IsMaestro {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *QuestionService) resolveCreador(ctx context.Context, id int64) (*models.Usuario, error) {
	creador, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	if !creador.IsMaestro {
		return nil, appErrors.ErrConflict
	}
	return creador, nil
}

func (s *QuestionService) checkPairExists(ctx context.Context, cuestionID, categoriaID int64) error {
	if _, err := s.repo.FindByID(ctx, cuestionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	if _, err := s.categories.FindByID(ctx, categoriaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Message)
	}
	return nil
}
