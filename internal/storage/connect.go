package storage

import (
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens Postgres and, for the Redis realtime backend, Redis, and
// picks the feed implementation.
func Connect(ctx context.Context, cfg *config.Config) (*Service, error) {
	dsn := cfg.Database.DSN()
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var (
		rdb  *redis.Client
		feed Feed
	)
	switch cfg.RealtimeBackend {
	case config.RealtimeRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		feed = NewRedisFeed(rdb)
	case config.RealtimePostgres:
		feed = NewPGFeed(db, dsn)
	default:
		return nil, fmt.Errorf("unknown realtime backend %q", cfg.RealtimeBackend)
	}

	log.Printf("INFO: Database connected, realtime over %s.", cfg.RealtimeBackend)
	return NewStorageService(db, rdb, feed), nil
}

// Close releases the database pool and the Redis client.
func (s *Service) Close() error {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("WARNING: Failed to close Redis: %v", err)
		}
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateCategory adds an active category.
func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	c := &models.Category{Name: name, IsActive: true}
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}
