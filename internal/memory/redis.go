package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"studio/internal/domain"
)

const defaultKeyPrefix = "studio:memory"

// RedisStore keeps three capped lists per brand, newest first.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// RedisOptions configures RedisStore. TTL zero keeps keys forever.
type RedisOptions struct {
	Prefix string
	TTL    time.Duration
}

func NewRedisStore(client redis.Cmdable, opts RedisOptions) *RedisStore {
	prefix := strings.TrimSuffix(strings.TrimSpace(opts.Prefix), ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *RedisStore) key(brandID, field string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, brandID, field)
}

// Load reads the brand lists. Missing keys yield an empty snapshot.
func (s *RedisStore) Load(ctx context.Context, brandID string) (domain.MemorySnapshot, error) {
	snap := domain.MemorySnapshot{BrandID: brandID}
	if strings.TrimSpace(brandID) == "" {
		return snap, nil
	}
	var (
		objCmd   *redis.StringSliceCmd
		fwCmd    *redis.StringSliceCmd
		toneCmd  *redis.StringSliceCmd
		countCmd *redis.StringCmd
	)
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		objCmd = p.LRange(ctx, s.key(brandID, "objectives"), 0, RecentObjectives-1)
		fwCmd = p.LRange(ctx, s.key(brandID, "frameworks"), 0, RecentEntries-1)
		toneCmd = p.LRange(ctx, s.key(brandID, "tones"), 0, RecentEntries-1)
		countCmd = p.Get(ctx, s.key(brandID, "count"))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return snap, fmt.Errorf("load memory: %w", err)
	}
	for _, o := range objCmd.Val() {
		snap.Objectives = append(snap.Objectives, domain.Objective(o))
	}
	snap.MessagingFrameworks = fwCmd.Val()
	snap.EmotionalTones = toneCmd.Val()
	if n, err := countCmd.Int(); err == nil {
		snap.AssetCount = n
	}
	return snap, nil
}

// Record prepends the entry and trims the lists in one transaction.
func (s *RedisStore) Record(ctx context.Context, brandID string, entry domain.MemoryEntry) error {
	if strings.TrimSpace(brandID) == "" {
		return nil
	}
	objKey := s.key(brandID, "objectives")
	fwKey := s.key(brandID, "frameworks")
	toneKey := s.key(brandID, "tones")
	countKey := s.key(brandID, "count")
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if entry.Objective != "" {
			p.LPush(ctx, objKey, string(entry.Objective))
			p.LTrim(ctx, objKey, 0, RecentObjectives-1)
		}
		if entry.MessagingFramework != "" {
			p.LPush(ctx, fwKey, entry.MessagingFramework)
			p.LTrim(ctx, fwKey, 0, RecentEntries-1)
		}
		if entry.EmotionalTone != "" {
			p.LPush(ctx, toneKey, entry.EmotionalTone)
			p.LTrim(ctx, toneKey, 0, RecentEntries-1)
		}
		p.Incr(ctx, countKey)
		if s.ttl > 0 {
			for _, k := range []string{objKey, fwKey, toneKey, countKey} {
				p.Expire(ctx, k, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record memory: %w", err)
	}
	return nil
}

var _ domain.MemoryStore = (*RedisStore)(nil)
