package store

import (
	"context"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string      `toml:"backend" json:"backend" validate:"omitempty,oneof=memory file redis mongo"`
	Dir     string      `toml:"dir" json:"dir,omitempty"`
	Redis   RedisConfig `toml:"redis" json:"redis"`
	Mongo   MongoConfig `toml:"mongo" json:"mongo"`
}

// Open creates the configured store. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "redis backend needs an address")
		}
		return NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		if cfg.Mongo.URI == "" {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "mongo backend needs a uri")
		}
		return NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
}
