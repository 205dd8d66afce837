package bootstrap

import (
	"fmt"

	"blogfeed/internal/cache"
	"blogfeed/internal/config"
	"blogfeed/internal/database"
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with the built-in groups and a demo graph.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := SeedIfEmpty(db, seed.DefaultOptions()); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// SeedIfEmpty runs the seeder when the users table has no rows. A populated store is left alone.
func SeedIfEmpty(db *gorm.DB, opts seed.Options) error {
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		middleware.Logger.Info("Skipping demo seed, store is not empty", "users", n)
		return nil
	}
	sum, err := seed.NewSeeder(db, opts).Run(seed.BuiltInGroups)
	if err != nil {
		return err
	}
	middleware.Logger.Info("Demo data seeded",
		"users", sum.Users, "groups", sum.Groups, "posts", sum.Posts,
		"comments", sum.Comments, "follows", sum.Follows)
	return nil
}
