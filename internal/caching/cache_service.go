package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"lexmart/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Report template caching
	GetReportTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*models.ReportTemplate, error)
	SetReportTemplate(ctx context.Context, tenantID uuid.UUID, template *models.ReportTemplate, ttl time.Duration) error
	DeleteReportTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error

	// Billing analytics caching
	GetBillingAnalytics(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error)
	SetBillingAnalytics(ctx context.Context, tenantID uuid.UUID, analytics map[string]interface{}, ttl time.Duration) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting for report execution. Returns the post-increment
	// count for the current window so callers can admit atomically.
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept both bare host:port and redis:// URLs
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func templateKey(tenantID, templateID uuid.UUID) string {
	return fmt.Sprintf("lexmart:report_template:%s:%s", tenantID.String(), templateID.String())
}

func analyticsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("lexmart:billing_analytics:%s", tenantID.String())
}

func (r *redisCacheService) GetReportTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*models.ReportTemplate, error) {
	data, err := r.client.Get(ctx, templateKey(tenantID, templateID)).Bytes()
	if err != nil {
		return nil, err
	}

	var template models.ReportTemplate
	if err := json.Unmarshal(data, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *redisCacheService) SetReportTemplate(ctx context.Context, tenantID uuid.UUID, template *models.ReportTemplate, ttl time.Duration) error {
	data, err := json.Marshal(template)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, templateKey(tenantID, template.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteReportTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	return r.client.Del(ctx, templateKey(tenantID, templateID)).Err()
}

func (r *redisCacheService) GetBillingAnalytics(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error) {
	data, err := r.client.Get(ctx, analyticsKey(tenantID)).Bytes()
	if err != nil {
		return nil, err
	}

	var analytics map[string]interface{}
	if err := json.Unmarshal(data, &analytics); err != nil {
		return nil, err
	}
	return analytics, nil
}

func (r *redisCacheService) SetBillingAnalytics(ctx context.Context, tenantID uuid.UUID, analytics map[string]interface{}, ttl time.Duration) error {
	data, err := json.Marshal(analytics)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, analyticsKey(tenantID), data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("lexmart:*:%s*", tenantID.String())

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := "lexmart:ratelimit:" + key
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
