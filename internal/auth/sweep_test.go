package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func newSweptStore(ttl time.Duration) *MongoAPIKeyStore {
	return &MongoAPIKeyStore{ttl: ttl, cache: make(map[string]cacheEntry), stopCh: make(chan struct{})}
}

func cacheLen(s *MongoAPIKeyStore) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func TestMongoAPIKeyStore_PurgeExpired(t *testing.T) {
	s := newSweptStore(time.Minute)
	s.remember("live", true)
	s.cache["old-miss"] = cacheEntry{active: false, expiresAt: time.Now().Add(-time.Second)}
	s.cache["old-hit"] = cacheEntry{active: true, expiresAt: time.Now().Add(-time.Second)}

	assert.Equal(t, 2, s.purgeExpired(time.Now()))
	assert.Equal(t, 1, cacheLen(s))
	_, ok := s.cache["live"]
	assert.True(t, ok)
}

func TestMongoAPIKeyStore_SweeperDropsMisses(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := newSweptStore(10 * time.Millisecond)
	go s.sweep(10 * time.Millisecond)
	defer s.Stop()

	for i := 0; i < 200; i++ {
		s.remember("unknown-"+strconv.Itoa(i), false)
	}
	assert.Eventually(t, func() bool { return cacheLen(s) == 0 }, time.Second, 5*time.Millisecond)
}

func TestMongoAPIKeyStore_StopTwice(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := newSweptStore(time.Minute)
	go s.sweep(time.Minute)
	s.Stop()
	s.Stop()
}
