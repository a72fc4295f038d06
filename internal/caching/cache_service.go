package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"labstock/internal/models"
)

// CacheService caches derived panel views so read paths skip regrouping on
// every request. Used cache-aside: every error is a miss, never a failure.
type CacheService interface {
	// Panel view caching
	GetPanelView(ctx context.Context, panel string) ([]models.AnnotatedRecord, error)
	SetPanelView(ctx context.Context, panel string, view []models.AnnotatedRecord, ttl time.Duration) error
	DeletePanelView(ctx context.Context, panel string) error

	// Cache invalidation
	InvalidateAll(ctx context.Context) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisCacheService(addr, password string, db int, log zerolog.Logger) CacheService {
	// Accept redis://host:port URLs as well as bare host:port.
	parsedAddr := addr
	if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
		parsedAddr = hostPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client, log: log}
}

func panelKey(panel string) string {
	return fmt.Sprintf("labstock:panel:%s", panel)
}

func (r *redisCacheService) GetPanelView(ctx context.Context, panel string) ([]models.AnnotatedRecord, error) {
	data, err := r.client.Get(ctx, panelKey(panel)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}
	var view []models.AnnotatedRecord
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *redisCacheService) SetPanelView(ctx context.Context, panel string, view []models.AnnotatedRecord, ttl time.Duration) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, panelKey(panel), data, ttl).Err()
}

func (r *redisCacheService) DeletePanelView(ctx context.Context, panel string) error {
	return r.client.Del(ctx, panelKey(panel)).Err()
}

func (r *redisCacheService) InvalidateAll(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "labstock:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
