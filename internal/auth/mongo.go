package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const keysCollection = "api_keys"

type cacheEntry struct {
	active    bool
	expiresAt time.Time
}

// MongoAPIKeyStore stores keys in the api_keys collection and remembers
// lookups, including misses, for ttl.
type MongoAPIKeyStore struct {
	coll  *mongo.Collection
	ttl   time.Duration
	mu    sync.RWMutex
	cache map[string]cacheEntry

	stopOnce sync.Once
	stopCh   chan struct{}
}

type apiKeyDoc struct {
	Key       string    `bson:"key"`
	Active    bool      `bson:"active"`
	Owner     string    `bson:"owner,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoAPIKeyStore sets up the collection and unique index on key and
// starts the goroutine that drops expired cache entries. Call Stop when done.
func NewMongoAPIKeyStore(ctx context.Context, db *mongo.Database, ttl time.Duration) (*MongoAPIKeyStore, error) {
	coll := db.Collection(keysCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create api key index: %w", err)
	}
	s := &MongoAPIKeyStore{coll: coll, ttl: ttl, cache: make(map[string]cacheEntry), stopCh: make(chan struct{})}
	every := ttl
	if every <= 0 {
		every = time.Minute
	}
	go s.sweep(every)
	return s, nil
}

func (s *MongoAPIKeyStore) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.purgeExpired(now)
		case <-s.stopCh:
			return
		}
	}
}

// purgeExpired drops cache entries that expired before now and reports how
// many were removed.
func (s *MongoAPIKeyStore) purgeExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, ce := range s.cache {
		if !now.Before(ce.expiresAt) {
			delete(s.cache, k)
			n++
		}
	}
	return n
}

// Stop ends the cache sweeper. It is safe to call more than once.
func (s *MongoAPIKeyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *MongoAPIKeyStore) remember(key string, active bool) {
	s.mu.Lock()
	s.cache[key] = cacheEntry{active: active, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *MongoAPIKeyStore) Validate(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrMissingKey
	}
	s.mu.RLock()
	ce, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(ce.expiresAt) {
		return ce.active, nil
	}
	var doc apiKeyDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "key", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s.remember(key, false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup api key: %w", err)
	}
	s.remember(key, doc.Active)
	return doc.Active, nil
}

func (s *MongoAPIKeyStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// Create upserts key and refreshes the local cache so the change is visible
// immediately on this instance.
func (s *MongoAPIKeyStore) Create(ctx context.Context, key string, active bool, owner string) error {
	if key == "" {
		return ErrMissingKey
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "key", Value: key}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "active", Value: active},
			{Key: "owner", Value: owner},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert api key: %w", err)
	}
	s.remember(key, active)
	return nil
}
