package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mediocregopher/radix/v3"
	"github.com/pkg/errors"
	"github.com/rs/xid"

	"gitlab.com/vendalink-commerce/affiliate_api/config"
	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

var ErrAttribution_BadCookie = errors.New("attribution cookie signature mismatch")

// AttributionKV - the durable key/value surface behind the attribution store.
// Production wires redis; tests run the in memory variant.
type AttributionKV interface {
	Get(key string) ([]byte, error)
	SetEx(key string, value []byte, ttl time.Duration) error
	Del(key string) error
	// Cleanup removes entries the predicate marks as expired and reports how
	// many were dropped. A backend with native TTLs may do nothing.
	Cleanup(expired func(value []byte) bool) (int, error)
}

type redisKV struct {
	pool *radix.Pool
}

func (kv *redisKV) Get(key string) ([]byte, error) {
	var value []byte
	if err := kv.pool.Do(radix.Cmd(&value, "GET", key)); err != nil {
		return nil, err
	}
	return value, nil
}

func (kv *redisKV) SetEx(key string, value []byte, ttl time.Duration) error {
	seconds := strconv.Itoa(int(ttl / time.Second))
	return kv.pool.Do(radix.FlatCmd(nil, "SETEX", key, seconds, value))
}

func (kv *redisKV) Del(key string) error {
	return kv.pool.Do(radix.Cmd(nil, "DEL", key))
}

// redis drops the keys itself when the SETEX TTL elapses
func (kv *redisKV) Cleanup(func(value []byte) bool) (int, error) {
	return 0, nil
}

type memoryKV struct {
	values map[string][]byte
	lock   *sync.RWMutex
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string][]byte), lock: &sync.RWMutex{}}
}

func (kv *memoryKV) Get(key string) ([]byte, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return kv.values[key], nil
}

func (kv *memoryKV) SetEx(key string, value []byte, _ time.Duration) error {
	kv.lock.Lock()
	kv.values[key] = value
	kv.lock.Unlock()
	return nil
}

func (kv *memoryKV) Del(key string) error {
	kv.lock.Lock()
	delete(kv.values, key)
	kv.lock.Unlock()
	return nil
}

func (kv *memoryKV) Cleanup(expired func(value []byte) bool) (int, error) {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	removed := 0
	for key, value := range kv.values {
		if expired(value) {
			delete(kv.values, key)
			removed++
		}
	}
	return removed, nil
}

// AttributionStore persists one referral attribution per visitor fingerprint
// with a 30 day TTL. Last touch wins unless the stored attribution is sticky.
type AttributionStore struct {
	kv  AttributionKV
	cfg config.AttributionConfig
}

// NewAttributionStore godoc
func NewAttributionStore(kv AttributionKV, cfg config.AttributionConfig) *AttributionStore {
	return &AttributionStore{kv: kv, cfg: cfg}
}

func attributionKey(fingerprint string) string {
	return "attr:" + fingerprint
}

// NewFingerprint issues a fresh visitor fingerprint
func (store *AttributionStore) NewFingerprint() string {
	return xid.New().String()
}

// Capture stores the referral code for the visitor. An existing sticky
// attribution is kept untouched; otherwise the new code overwrites (last
// touch wins). Returns the attribution now in effect.
func (store *AttributionStore) Capture(fingerprint, code string, tags model.CampaignTags, sticky bool) (*model.ReferralAttribution, error) {
	existing, err := store.Resolve(fingerprint)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Sticky {
		return existing, nil
	}

	attribution := &model.ReferralAttribution{
		ReferralCode: code,
		Fingerprint:  fingerprint,
		Tags:         tags,
		Sticky:       sticky,
		CapturedAt:   time.Now().UTC(),
	}
	stored, err := attribution.ToBinary()
	if err != nil {
		return nil, err
	}
	if err := store.kv.SetEx(attributionKey(fingerprint), stored, model.AttributionTTL); err != nil {
		return nil, errors.Wrap(err, "unable to persist attribution")
	}
	return attribution, nil
}

// Resolve returns the active attribution for the visitor, or nil
func (store *AttributionStore) Resolve(fingerprint string) (*model.ReferralAttribution, error) {
	stored, err := store.kv.Get(attributionKey(fingerprint))
	if err != nil {
		return nil, errors.Wrap(err, "unable to read attribution")
	}
	if len(stored) == 0 {
		return nil, nil
	}
	attribution := &model.ReferralAttribution{}
	if err := attribution.FromBinary(stored); err != nil {
		return nil, err
	}
	if attribution.Expired(time.Now().UTC()) {
		_ = store.kv.Del(attributionKey(fingerprint))
		return nil, nil
	}
	return attribution, nil
}

// Clear drops the visitor's attribution, used after a conversion
func (store *AttributionStore) Clear(fingerprint string) error {
	return store.kv.Del(attributionKey(fingerprint))
}

// CleanupExpired sweeps attributions past their TTL out of the backend
func (store *AttributionStore) CleanupExpired() (int, error) {
	now := time.Now().UTC()
	return store.kv.Cleanup(func(value []byte) bool {
		attribution := &model.ReferralAttribution{}
		if err := attribution.FromBinary(value); err != nil {
			return true
		}
		return attribution.Expired(now)
	})
}

// CookieName godoc
func (store *AttributionStore) CookieName() string {
	return store.cfg.CookieName
}

// CookieTTL godoc
func (store *AttributionStore) CookieTTL() time.Duration {
	return model.AttributionTTL
}

// SignCookie encodes and signs the fingerprint for the http-only cookie
func (store *AttributionStore) SignCookie(fingerprint string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(fingerprint))
	return payload + "." + store.sign(payload)
}

// VerifyCookie validates the signature and returns the fingerprint
func (store *AttributionStore) VerifyCookie(cookie string) (string, error) {
	parts := strings.SplitN(cookie, ".", 2)
	if len(parts) != 2 {
		return "", ErrAttribution_BadCookie
	}
	if !hmac.Equal([]byte(store.sign(parts[0])), []byte(parts[1])) {
		return "", ErrAttribution_BadCookie
	}
	fingerprint, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrAttribution_BadCookie
	}
	return string(fingerprint), nil
}

func (store *AttributionStore) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(store.cfg.CookieSecret))
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
