package sync

import (
	"cost-sync/core/odoo"
	"cost-sync/core/server"
	"cost-sync/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Sync feature. db and archive may be nil.
func NewFeature(serverCfg server.Config, odooCfg odoo.Config, logger *zap.Logger, db *gorm.DB, archive *storage.Archive) *Feature {
	svc := NewService(serverCfg, odooCfg, logger, db, archive)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes and prepares the history tables.
func (f *Feature) Load(app fiber.Router) error {
	if f.service.history != nil {
		if err := f.service.history.Migrate(); err != nil {
			return err
		}
	}
	f.handler.RegisterRoutes(app)
	return nil
}
