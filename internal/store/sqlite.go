package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-authgate/realmgate/internal/models"

	"gorm.io/gorm"
)

// Store is the protocol record store. Consume operations on authorization
// codes and refresh tokens are serialized by mu and run in a transaction, so
// a code or token is handed out at most once even under concurrent requests.
type Store struct {
	db     *gorm.DB
	driver string
	mu     sync.Mutex
}

// New opens the database, applies pragmas for sqlite and migrates the schema.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// One connection: sqlite has a single writer, and every ":memory:"
		// connection would otherwise open its own empty database.
		sqlDB.SetMaxOpenConns(1)

		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys=ON",
			"PRAGMA busy_timeout=5000",
		} {
			if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("apply %q: %w", pragma, err)
			}
		}
	}

	// Auto migrate
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Realm{},
		&models.SigningKey{},
		&models.User{},
		&models.Client{},
		&models.AuthorizationCode{},
		&models.RefreshToken{},
		&models.Session{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db, driver: driver}, nil
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the store's sentinel errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
