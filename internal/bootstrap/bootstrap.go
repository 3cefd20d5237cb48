// Package bootstrap seeds the initial administrator account from the
// environment so a fresh deployment is never locked out.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/laucv/gcuest-api/internal/models"
	"github.com/laucv/gcuest-api/pkg/config"
)

type userStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Usuario, error)
	Create(ctx context.Context, user *models.Usuario) error
}

// SeedAdmin creates the admin user named in the config unless a user
// with that username already exists. The seeded account is enabled and
// carries both the maestro and admin roles.
func SeedAdmin(ctx context.Context, store userStore, cfg config.AdminConfig, logger *zap.Logger) error {
	if cfg.Username == "" || cfg.Email == "" || cfg.Password == "" {
		logger.Info("admin seeding skipped, credentials not configured")
		return nil
	}

	_, err := store.FindByUsername(ctx, cfg.Username)
	if err == nil {
		logger.Info("admin seeding skipped, user already exists",
			zap.String("username", cfg.Username))
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	admin, err := models.NewUsuario(cfg.Username, cfg.Email, cfg.Password, true, true, true)
	if err != nil {
		return err
	}
	if err := store.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("admin user seeded",
		zap.String("username", cfg.Username),
		zap.Int64("id", admin.ID))
	return nil
}
