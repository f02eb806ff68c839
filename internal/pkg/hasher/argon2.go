// Package hasher provides Argon2id password hashing in PHC string format.
package hasher

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Default cost parameters: ~15 MiB memory, 2 iterations, 1 lane. A placeholder
// profile tuned for acceptable request latency; override via Params.
const (
	defaultMemoryKiB   uint32 = 15 * 1000
	defaultIterations  uint32 = 2
	defaultParallelism uint8  = 1
	saltLength                = 16
	keyLength          uint32 = 32
)

var errMalformedHash = errors.New("malformed password hash")

// Params control the Argon2id cost profile.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the reference cost profile.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   defaultMemoryKiB,
		Iterations:  defaultIterations,
		Parallelism: defaultParallelism,
	}
}

// Argon2 hashes and verifies passwords. Hashing is CPU- and memory-bound, so
// every operation passes through a bounded gate sized to the number of CPUs;
// callers beyond that limit wait (respecting their context) instead of
// oversubscribing the scheduler and head-of-line-blocking request handling.
type Argon2 struct {
	params Params
	gate   chan struct{}
}

// NewArgon2 builds a hasher with the given cost profile.
func NewArgon2(params Params) *Argon2 {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &Argon2{
		params: params,
		gate:   make(chan struct{}, workers),
	}
}

// Hash computes an Argon2id hash of password with a fresh random salt and
// returns it in PHC format:
//
//	$argon2id$v=19$m=15000,t=2,p=1$<salt-b64>$<hash-b64>
func (a *Argon2) Hash(ctx context.Context, password string) (string, error) {
	if err := a.acquire(ctx); err != nil {
		return "", err
	}
	defer a.release()

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.params.Iterations, a.params.MemoryKiB, a.params.Parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.params.MemoryKiB, a.params.Iterations, a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash of candidate using the parameters and salt
// embedded in encodedHash and compares in constant time. A mismatch is
// reported as (false, nil); the error is reserved for malformed hashes and
// cancellation.
func (a *Argon2) Verify(ctx context.Context, encodedHash, candidate string) (bool, error) {
	memory, iterations, parallelism, salt, key, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	if err := a.acquire(ctx); err != nil {
		return false, err
	}
	defer a.release()

	computed := argon2.IDKey([]byte(candidate), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func (a *Argon2) acquire(ctx context.Context) error {
	select {
	case a.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Argon2) release() { <-a.gate }

func decodePHC(encoded string) (memory, iterations uint32, parallelism uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errMalformedHash
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, errMalformedHash
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return 0, 0, 0, nil, nil, errMalformedHash
	}
	if memory == 0 || iterations == 0 || parallelism == 0 {
		return 0, 0, 0, nil, nil, errMalformedHash
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(salt) == 0 {
		return 0, 0, 0, nil, nil, errMalformedHash
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, errMalformedHash
	}
	return memory, iterations, parallelism, salt, key, nil
}
