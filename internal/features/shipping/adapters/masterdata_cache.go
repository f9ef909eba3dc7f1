package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-hub/internal/core/cache"
	"order-hub/internal/core/logger"
	"order-hub/internal/features/shipping/domain"

	"go.uber.org/zap"
)

// RedisMasterDataCache stores province and service lists in the shared cache.
// Failures are logged and reported as misses.
type RedisMasterDataCache struct {
	cache cache.Cache
	log   *zap.Logger
}

// NewRedisMasterDataCache creates a master-data cache on top of c.
func NewRedisMasterDataCache(c cache.Cache) *RedisMasterDataCache {
	return &RedisMasterDataCache{
		cache: c,
		log:   logger.Named("shipping.cache"),
	}
}

type cachedResult struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func masterDataKey(carrier domain.CarrierID, op domain.Operation) string {
	return fmt.Sprintf("shipping:masterdata:%s:%s", carrier, op)
}

// Get returns the cached result, if any.
func (r *RedisMasterDataCache) Get(ctx context.Context, carrier domain.CarrierID, op domain.Operation) (domain.OperationResult, bool) {
	key := masterDataKey(carrier, op)

	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.log.Warn("Master data cache read failed", zap.String("key", key), zap.Error(err))
		}
		return domain.OperationResult{}, false
	}

	var cached cachedResult
	if err := json.Unmarshal(raw, &cached); err != nil {
		r.log.Warn("Discarding corrupt master data entry", zap.String("key", key), zap.Error(err))
		_ = r.cache.Delete(ctx, key)
		return domain.OperationResult{}, false
	}

	var data any
	if len(cached.Data) > 0 {
		if err := json.Unmarshal(cached.Data, &data); err != nil {
			return domain.OperationResult{}, false
		}
	}

	return domain.Succeeded(cached.Message, data, 200), true
}

// Put stores a successful result for ttl.
func (r *RedisMasterDataCache) Put(ctx context.Context, carrier domain.CarrierID, op domain.Operation, result domain.OperationResult, ttl time.Duration) {
	if !result.Success {
		return
	}

	key := masterDataKey(carrier, op)

	data, err := json.Marshal(result.Data)
	if err != nil {
		r.log.Warn("Master data not cacheable", zap.String("key", key), zap.Error(err))
		return
	}

	raw, err := json.Marshal(cachedResult{Message: result.Message, Data: data})
	if err != nil {
		return
	}

	if err := r.cache.Set(ctx, key, raw, ttl); err != nil {
		r.log.Warn("Master data cache write failed", zap.String("key", key), zap.Error(err))
	}
}
