package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// ErrCacheMiss signals the profile is not cached.
var ErrCacheMiss = errors.New("patient cache miss")

// PatientCache keeps recently read patient profiles in Redis so repeated
// chart lookups skip Postgres. Entries expire after the configured TTL and
// are invalidated on every write.
type PatientCache struct {
	redis *Redis
	ttl   time.Duration
}

// NewPatientCache builds a cache over the shared Redis client.
func NewPatientCache(r *Redis, ttl time.Duration) *PatientCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PatientCache{redis: r, ttl: ttl}
}

func patientKey(id string) string {
	return "patient:" + id
}

// Get returns the cached patient or ErrCacheMiss.
func (c *PatientCache) Get(ctx context.Context, id string) (*domain.Patient, error) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, ErrCacheMiss
	}
	raw, err := c.redis.Client.Get(ctx, patientKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var patient domain.Patient
	if err := json.Unmarshal(raw, &patient); err != nil {
		return nil, ErrCacheMiss
	}
	return &patient, nil
}

// Set stores the patient profile under its TTL.
func (c *PatientCache) Set(ctx context.Context, patient *domain.Patient) error {
	if c == nil || c.redis == nil || c.redis.Client == nil || patient == nil {
		return nil
	}
	raw, err := json.Marshal(patient)
	if err != nil {
		return err
	}
	return c.redis.Client.Set(ctx, patientKey(patient.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry after a write.
func (c *PatientCache) Invalidate(ctx context.Context, id string) error {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil
	}
	return c.redis.Client.Del(ctx, patientKey(id)).Err()
}
