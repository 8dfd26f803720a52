package settings

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"anchorage/internal/truststore/models"
	"anchorage/internal/truststore/ports"
	"anchorage/pkg/platform/sentinel"
)

// Redis key layout, all scoped per domain:
//
//	truststore:{domain}:order     ZSET  fingerprint -> insertion sequence
//	truststore:{domain}:certs     HASH  fingerprint -> DER bytes
//	truststore:{domain}:settings  HASH  fingerprint -> settings JSON
//	truststore:{domain}:seq       counter feeding the order scores
const (
	orderKeyFormat    = "truststore:%s:order"
	certsKeyFormat    = "truststore:%s:certs"
	settingsKeyFormat = "truststore:%s:settings"
	seqKeyFormat      = "truststore:%s:seq"
)

// RedisStore keeps trust settings in Redis for deployments where multiple
// instances share one settings source. Enumeration order is the insertion
// sequence, tracked by a per-domain counter.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed trust-settings store. The client
// lifecycle is managed externally.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) CertificatesWithSettings(ctx context.Context, domain models.Domain) ([]*x509.Certificate, error) {
	orderKey := fmt.Sprintf(orderKeyFormat, domain)

	fingerprints, err := s.client.ZRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read enumeration order: %w", err)
	}
	if len(fingerprints) == 0 {
		return nil, ports.ErrNoSettings
	}

	raw, err := s.client.HMGet(ctx, fmt.Sprintf(certsKeyFormat, domain), fingerprints...).Result()
	if err != nil {
		return nil, fmt.Errorf("read certificates: %w", err)
	}

	certs := make([]*x509.Certificate, 0, len(raw))
	for i, entry := range raw {
		der, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("certificate missing for fingerprint %s", fingerprints[i])
		}
		cert, err := x509.ParseCertificate([]byte(der))
		if err != nil {
			return nil, fmt.Errorf("parse stored certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func (s *RedisStore) TrustSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate) (models.TrustSettings, error) {
	settingsKey := fmt.Sprintf(settingsKeyFormat, domain)

	raw, err := s.client.HGet(ctx, settingsKey, models.Fingerprint(cert)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read trust settings: %w", err)
	}

	var settings models.TrustSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("unmarshal trust settings: %w", err)
	}
	return settings, nil
}

func (s *RedisStore) PutSettings(ctx context.Context, domain models.Domain, cert *x509.Certificate, settings models.TrustSettings) error {
	if settings == nil {
		settings = models.TrustSettings{}
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal trust settings: %w", err)
	}

	fingerprint := models.Fingerprint(cert)

	// A fresh sequence number orders first-time inserts; ZAddNX leaves the
	// score of an already-known fingerprint untouched so replacement keeps
	// the certificate's position.
	seq, err := s.client.Incr(ctx, fmt.Sprintf(seqKeyFormat, domain)).Result()
	if err != nil {
		return fmt.Errorf("advance insertion sequence: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.ZAddNX(ctx, fmt.Sprintf(orderKeyFormat, domain), redis.Z{Score: float64(seq), Member: fingerprint})
	pipe.HSet(ctx, fmt.Sprintf(certsKeyFormat, domain), fingerprint, cert.Raw)
	pipe.HSet(ctx, fmt.Sprintf(settingsKeyFormat, domain), fingerprint, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store trust settings: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveSettings(ctx context.Context, domain models.Domain, fingerprint string) error {
	removed, err := s.client.ZRem(ctx, fmt.Sprintf(orderKeyFormat, domain), fingerprint).Result()
	if err != nil {
		return fmt.Errorf("remove from enumeration order: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, fmt.Sprintf(certsKeyFormat, domain), fingerprint)
	pipe.HDel(ctx, fmt.Sprintf(settingsKeyFormat, domain), fingerprint)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove trust settings: %w", err)
	}
	return nil
}
