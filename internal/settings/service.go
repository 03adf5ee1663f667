package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
)

const redisKeyPrefix = "mpos:settings:"

// Service is the settings provider. It keeps an in-memory snapshot per
// scope that the route guard reads synchronously, refilled through a Redis
// read-through cache over the Postgres repository. Concurrent loads for the
// same scope collapse via singleflight.
type Service struct {
	repo         Repository
	cache        *redis.Client
	logger       *slog.Logger
	cacheTTL     time.Duration
	fetchTimeout time.Duration

	group  singleflight.Group
	mu     sync.RWMutex
	loaded map[string]*authz.ScopeSettings
}

// NewService constructs a Service. cache may be nil, in which case every
// load goes to the repository.
func NewService(repo Repository, cache *redis.Client, logger *slog.Logger, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		repo:         repo,
		cache:        cache,
		logger:       logger,
		cacheTTL:     cacheTTL,
		fetchTimeout: 10 * time.Second,
		loaded:       make(map[string]*authz.ScopeSettings),
	}
}

// Cached returns the already-loaded settings for the scope, or nil. It
// never blocks: the guard decides with what is on hand and fails closed.
func (s *Service) Cached(kind authz.ScopeKind, id int64) *authz.ScopeSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[scopeKey(kind, id)]
}

// Prefetch loads the scope's settings in the background. Fire-and-forget:
// the caller's request decides without the result.
func (s *Service) Prefetch(kind authz.ScopeKind, id int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()
		if _, err := s.Load(ctx, kind, id); err != nil && s.logger != nil {
			s.logger.Warn("settings prefetch failed",
				slog.String("scope", scopeKey(kind, id)),
				slog.Any("error", err),
			)
		}
	}()
}

// Load fetches settings for the scope through the cache hierarchy and
// stores them in the in-memory snapshot.
func (s *Service) Load(ctx context.Context, kind authz.ScopeKind, id int64) (*authz.ScopeSettings, error) {
	key := scopeKey(kind, id)
	v, err, _ := s.group.Do(key, func() (any, error) {
		flags, err := s.fetch(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		return &authz.ScopeSettings{Kind: kind, ID: id, Flags: flags}, nil
	})
	if err != nil {
		return nil, err
	}
	loaded := v.(*authz.ScopeSettings)
	s.store(kind, id, loaded)
	return loaded, nil
}

// SetFlag writes one flag and invalidates every cache layer for the scope,
// so the next guard evaluation sees the change.
func (s *Service) SetFlag(ctx context.Context, kind authz.ScopeKind, id int64, name authz.Flag, enabled bool) error {
	if !IsKnownFlag(name) {
		return errors.New("settings: unknown flag " + string(name))
	}
	if err := s.repo.SetFlag(ctx, kind, id, name, enabled); err != nil {
		return err
	}
	s.Invalidate(ctx, kind, id)
	return nil
}

// Invalidate drops the scope from the in-memory snapshot and Redis.
func (s *Service) Invalidate(ctx context.Context, kind authz.ScopeKind, id int64) {
	key := scopeKey(kind, id)
	s.mu.Lock()
	delete(s.loaded, key)
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.Del(ctx, redisKeyPrefix+key).Err(); err != nil && s.logger != nil {
			s.logger.Warn("settings cache invalidate failed", slog.String("scope", key), slog.Any("error", err))
		}
	}
}

func (s *Service) fetch(ctx context.Context, kind authz.ScopeKind, id int64) (map[authz.Flag]bool, error) {
	key := redisKeyPrefix + scopeKey(kind, id)
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var flags map[authz.Flag]bool
			if err := json.Unmarshal(data, &flags); err == nil {
				return flags, nil
			}
			// Corrupt cache entry: fall through to the repository.
		} else if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("settings cache read failed", slog.Any("error", err))
		}
	}

	flags, err := s.repo.GetFlags(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if data, err := json.Marshal(flags); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("settings cache write failed", slog.Any("error", err))
			}
		}
	}
	return flags, nil
}

// store keeps the result only under the scope it was fetched for. A fetch
// issued for one scope can never surface under another, which is what makes
// results from an abandoned navigation harmless.
func (s *Service) store(kind authz.ScopeKind, id int64, loaded *authz.ScopeSettings) {
	if loaded == nil || loaded.Kind != kind || loaded.ID != id {
		return
	}
	s.mu.Lock()
	s.loaded[scopeKey(kind, id)] = loaded
	s.mu.Unlock()
}
