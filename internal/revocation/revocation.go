package revocation

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenerationSource is the authoritative storage for per-user session
// generations (the users table in practice).
type GenerationSource interface {
	SessionGeneration(ctx context.Context, userID string) (int64, error)
	BumpSessionGeneration(ctx context.Context, userID string) (int64, error)
}

// Store answers "what is this user's current session generation" on the
// hot path of every authenticated request. Reads go through Redis when
// available and fall back to the database; bumps write the database
// first and then refresh the cache.
type Store struct {
	source   GenerationSource
	redisdb  *redis.Client
	cacheTTL time.Duration
}

func NewStore(source GenerationSource, redisdb *redis.Client) *Store {
	return &Store{
		source:   source,
		redisdb:  redisdb,
		cacheTTL: 10 * time.Minute,
	}
}

// NewRedis builds a redis client with the same conservative timeouts the
// rest of the stack uses. Returns nil when addr is empty so deployments
// without Redis degrade to database lookups.
func NewRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func cacheKey(userID string) string {
	return "session:gen:" + userID
}

func (s *Store) Generation(ctx context.Context, userID string) (int64, error) {
	if s.redisdb != nil {
		val, err := s.redisdb.Get(ctx, cacheKey(userID)).Result()

		if err == nil {
			gen, parseErr := strconv.ParseInt(val, 10, 64)
			if parseErr == nil {
				return gen, nil
			}
			// unparseable entry, fall through to the source
		}
	}

	gen, err := s.source.SessionGeneration(ctx, userID)

	if err != nil {
		return 0, err
	}

	if s.redisdb != nil {
		// best effort: a failed cache fill only costs the next lookup
		_ = s.redisdb.Set(ctx, cacheKey(userID), strconv.FormatInt(gen, 10), s.cacheTTL).Err()
	}

	return gen, nil
}

// Bump invalidates every outstanding token for the user. The database
// write is authoritative; the cache is refreshed, not merely deleted, so
// a stale read cannot resurrect the old generation.
func (s *Store) Bump(ctx context.Context, userID string) (int64, error) {
	gen, err := s.source.BumpSessionGeneration(ctx, userID)

	if err != nil {
		return 0, err
	}

	if s.redisdb != nil {
		_ = s.redisdb.Set(ctx, cacheKey(userID), strconv.FormatInt(gen, 10), s.cacheTTL).Err()
	}

	return gen, nil
}

// Ping checks cache connectivity for readiness probes. A nil client is
// healthy: the store simply runs without a cache.
func (s *Store) Ping(ctx context.Context) error {
	if s.redisdb == nil {
		return nil
	}
	return s.redisdb.Ping(ctx).Err()
}
