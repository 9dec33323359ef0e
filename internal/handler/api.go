package handler

import (
	"github.com/brightsite/internal/service"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	blog      *service.BlogService
	auth      *service.AuthService
	pages     *service.PageService
	authors   *service.AuthorService
	logger    zerolog.Logger
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, mailer service.Mailer, logger zerolog.Logger, uploadDir, uploadURL string) *API {
	return &API{
		db:        gdb,
		blog:      service.NewBlogService(gdb, logger),
		auth:      service.NewAuthService(gdb, mailer, logger),
		pages:     service.NewPageService(gdb),
		authors:   service.NewAuthorService(gdb),
		logger:    logger.With().Str("component", "handler").Logger(),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// Auth exposes the auth service for session-change subscribers.
func (a *API) Auth() *service.AuthService {
	return a.auth
}
