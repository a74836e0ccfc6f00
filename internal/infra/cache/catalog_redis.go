package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"

	"github.com/go-redis/redis/v8"
)

const (
	keyProducts   = "catalog:products"
	keyCategories = "catalog:categories"
)

// CatalogRedisCache は商品・カテゴリ一覧をJSONで持つ。
type CatalogRedisCache struct {
	client *redis.Client
	prefix string
}

// Open はREDIS_URLから接続して疎通を確認する。
func Open(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// DI（prefixは同じRedisを共有するとき用）
func NewCatalogRedisCache(client *redis.Client, prefix string) *CatalogRedisCache {
	return &CatalogRedisCache{client: client, prefix: prefix}
}

func (c *CatalogRedisCache) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	var out []model.Product
	ok, err := c.get(ctx, keyProducts, &out)
	return out, ok, err
}

func (c *CatalogRedisCache) SetProducts(ctx context.Context, products []model.Product, ttl time.Duration) error {
	return c.set(ctx, keyProducts, products, ttl)
}

func (c *CatalogRedisCache) GetCategories(ctx context.Context) ([]model.Category, bool, error) {
	var out []model.Category
	ok, err := c.get(ctx, keyCategories, &out)
	return out, ok, err
}

func (c *CatalogRedisCache) SetCategories(ctx context.Context, categories []model.Category, ttl time.Duration) error {
	return c.set(ctx, keyCategories, categories, ttl)
}

// Invalidate は両方消す（スタッフの変更後）
func (c *CatalogRedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key(keyProducts), c.key(keyCategories)).Err()
}

func (c *CatalogRedisCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *CatalogRedisCache) get(ctx context.Context, k string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		//壊れた値は無かったことにする
		_ = c.client.Del(ctx, c.key(k)).Err()
		return false, nil
	}
	return true, nil
}

func (c *CatalogRedisCache) set(ctx context.Context, k string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(k), data, ttl).Err()
}
