package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/krkdev/contacts-api/internal/config"
	"github.com/krkdev/contacts-api/internal/db"
	"github.com/krkdev/contacts-api/internal/mailer"
	"github.com/krkdev/contacts-api/internal/markdown"
	"github.com/krkdev/contacts-api/internal/middleware"
	"github.com/krkdev/contacts-api/internal/repository"
	"github.com/krkdev/contacts-api/internal/service"
	"github.com/krkdev/contacts-api/internal/storage"
)

type App struct {
	Cfg     *config.Config
	DB      *sqlx.DB
	Storage storage.Storage

	Sessions repository.SessionRepository
	Tokens   repository.TokenRepository

	AuthService    *service.AuthService
	UserService    *service.UserService
	EmailService   *service.EmailService
	ContactService *service.ContactService
	AvatarService  *service.AvatarService

	AuthLimiter *middleware.RateLimiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Email transport
	m, err := mailer.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Assemble(cfg, database, m, fileStorage), nil
}

// Assemble wires repositories and services over already opened resources.
func Assemble(cfg *config.Config, database *sqlx.DB, m mailer.Mailer, fileStorage storage.Storage) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	contactRepository := repository.NewContactRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Services
	emailService := service.NewEmailService(m, markdown.NewParser(), cfg.AppURL, cfg.AppName)
	authService := service.NewAuthService(
		userRepository,
		sessionRepository,
		tokenRepository,
		emailService,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.TokenEmailVerifyExpiry,
	)
	userService := service.NewUserService(userRepository)
	contactService := service.NewContactService(contactRepository)
	avatarService := service.NewAvatarService(userRepository, fileRepository, fileStorage, cfg.TmpDir)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        fileStorage,
		Sessions:       sessionRepository,
		Tokens:         tokenRepository,
		AuthService:    authService,
		UserService:    userService,
		EmailService:   emailService,
		ContactService: contactService,
		AvatarService:  avatarService,
		AuthLimiter:    middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow),
	}
}

func (a *App) Close() error {
	if a.AuthLimiter != nil {
		a.AuthLimiter.Stop()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
