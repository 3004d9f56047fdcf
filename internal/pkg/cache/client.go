package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client define o contrato de cache usado pelos repositórios e pelo rate limiter.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr incrementa um contador e garante a expiração da janela.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ErrCacheMiss é retornado quando a chave não é encontrada no cache.
var ErrCacheMiss = redis.Nil

// RedisClient é a implementação de Client sobre Redis.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient cria o cliente e faz um PING. O cliente é devolvido mesmo se o
// PING falhar: o cache é opcional e os chamadores degradam sem ele.
func NewRedisClient(addr string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := &RedisClient{rdb: rdb}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("falha no PING ao Redis em %s: %w", addr, err)
	}
	return client, nil
}

// Get recupera o valor associado a uma chave.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set define um valor para uma chave com um tempo de expiração.
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Delete remove uma chave do cache.
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// WindowStore é o mínimo que FixedWindow precisa do Redis.
type WindowStore interface {
	// IncrWithTTL incrementa o contador e lê o TTL restante na mesma transação.
	// TTL negativo significa chave sem expiração.
	IncrWithTTL(ctx context.Context, key string) (int64, time.Duration, error)
	Expire(ctx context.Context, key string, window time.Duration) error
}

// FixedWindow conta uma ocorrência na janela de key. A expiração é definida
// sempre que a chave estiver sem TTL, não só no primeiro hit: um EXPIRE que
// falhou é refeito na próxima chamada e a chave nunca fica eterna.
func FixedWindow(ctx context.Context, store WindowStore, key string, window time.Duration) (int64, error) {
	count, ttl, err := store.IncrWithTTL(ctx, key)
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		if err := store.Expire(ctx, key, window); err != nil {
			return count, err
		}
	}
	return count, nil
}

// IncrWithTTL envia INCR e TTL num MULTI/EXEC.
func (c *RedisClient) IncrWithTTL(ctx context.Context, key string) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// Expire define a expiração da chave.
func (c *RedisClient) Expire(ctx context.Context, key string, window time.Duration) error {
	return c.rdb.Expire(ctx, key, window).Err()
}

// Incr implementa a janela fixa do rate limiter sobre o Redis.
func (c *RedisClient) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return FixedWindow(ctx, c, key, window)
}

// Close encerra o pool de conexões.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
