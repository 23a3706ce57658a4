package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "helpdesk/internal/feature/auth/adapters"
	"helpdesk/internal/feature/auth/usecase"
	"helpdesk/internal/platform/session"
)

// sessionKeyPrefix namespaces session keys in Redis.
const sessionKeyPrefix = "chamados:session"

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the database.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, sessionKeyPrefix)
	}
	return authadapters.NewSessionGorm(db)
}
