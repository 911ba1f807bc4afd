package identityinfra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "identity:user:"

// CachedClient decorates an identity.Client with a read-through Redis
// cache for GetUser. Cache errors degrade to a direct provider call.
// Reads on a context marked with identity.WithFreshRead skip the cache
// and refresh the stored entry.
type CachedClient struct {
	identity.Client
	redis *redis.Client
	ttl   time.Duration
	log   *logx.Logger
}

// NewCachedClient wraps next. Entries live for ttl.
func NewCachedClient(next identity.Client, rdb *redis.Client, ttl time.Duration, log *logx.Logger) *CachedClient {
	return &CachedClient{
		Client: next,
		redis:  rdb,
		ttl:    ttl,
		log:    log,
	}
}

func profileKey(id kernel.SubjectID) string {
	return profileKeyPrefix + id.String()
}

// GetUser serves from cache when possible
func (c *CachedClient) GetUser(ctx context.Context, subjectID kernel.SubjectID) (*identity.Profile, error) {
	key := profileKey(subjectID)

	if !identity.FreshRead(ctx) {
		if p, ok := c.load(ctx, key); ok {
			return p, nil
		}
	}

	p, err := c.Client.GetUser(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, p)
	return p, nil
}

// UpdateUser forwards the update and refreshes the cached profile
func (c *CachedClient) UpdateUser(ctx context.Context, subjectID kernel.SubjectID, update identity.NameUpdate) (*identity.Profile, error) {
	key := profileKey(subjectID)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("identity cache: invalidate failed")
	}

	p, err := c.Client.UpdateUser(ctx, subjectID, update)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, p)
	return p, nil
}

func (c *CachedClient) load(ctx context.Context, key string) (*identity.Profile, bool) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p identity.Profile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, true
		}
		c.log.WithField("key", key).Warn("identity cache: dropping undecodable entry")
	case !errors.Is(err, redis.Nil):
		c.log.WithError(err).WithField("key", key).Warn("identity cache: read failed")
	}
	return nil, false
}

func (c *CachedClient) store(ctx context.Context, key string, p *identity.Profile) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("identity cache: write failed")
	}
}
