package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kraken-commerce/backend/models"
)

// CartRepository stores carts in redis, one key per customer, with a TTL so
// abandoned carts expire on their own.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CartRepository) getKey(userName string) string {
	return fmt.Sprintf("cart:user:%s", userName)
}

func (r *CartRepository) GetCart(ctx context.Context, userName string) (*models.Cart, error) {
	key := r.getKey(userName)
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// No cart found
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	key := r.getKey(cart.UserName)
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *CartRepository) DeleteCart(ctx context.Context, userName string) error {
	key := r.getKey(userName)
	return r.client.Del(ctx, key).Err()
}

// ListCarts returns every live cart. Used by the collaborator-facing GET /cart.
func (r *CartRepository) ListCarts(ctx context.Context) ([]models.Cart, error) {
	var carts []models.Cart
	iter := r.client.Scan(ctx, 0, "cart:user:*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var cart models.Cart
		if err := json.Unmarshal([]byte(data), &cart); err != nil {
			continue
		}
		carts = append(carts, cart)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return carts, nil
}
