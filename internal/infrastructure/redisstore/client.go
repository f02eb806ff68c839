// Package redisstore implements the durable challenge and revocation stores
// on Redis. Both record kinds are TTL-bound, which is what makes Redis the
// natural backend: expiry is enforced by the server, never by application
// sweeps.
package redisstore

import "github.com/redis/go-redis/v9"

// NewClient builds a single-node Redis client.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
