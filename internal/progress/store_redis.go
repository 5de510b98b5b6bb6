package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/platform/cache"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// RedisStore keeps completed topics in a set and the result log in a list,
// both keyed by user under the cache prefix.
type RedisStore struct {
	cache  *cache.Cache
	client *redis.Client
}

// NewRedisStore creates a Redis-backed progress store.
func NewRedisStore(c *cache.Cache) (*RedisStore, error) {
	if c == nil || c.Client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisStore{cache: c, client: c.Client}, nil
}

func (s *RedisStore) completedKey(userID string) string {
	return s.cache.Key("progress", userID, "completed")
}

func (s *RedisStore) resultsKey(userID string) string {
	return s.cache.Key("progress", userID, "results")
}

func (s *RedisStore) LoadCompleted(ctx context.Context, userID string) ([]curriculum.Topic, error) {
	members, err := s.client.SMembers(ctx, s.completedKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read completed topics: %w", err)
	}
	topics := make([]curriculum.Topic, len(members))
	for i, m := range members {
		topics[i] = curriculum.Topic(m)
	}
	slices.Sort(topics)
	return topics, nil
}

func (s *RedisStore) SaveCompleted(ctx context.Context, userID string, topics []curriculum.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	members := make([]any, len(topics))
	for i, t := range topics {
		members[i] = string(t)
	}
	if err := s.client.SAdd(ctx, s.completedKey(userID), members...).Err(); err != nil {
		return fmt.Errorf("add completed topics: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearCompleted(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.completedKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete completed topics: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendResult(ctx context.Context, r quiz.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.client.RPush(ctx, s.resultsKey(r.UserID), data).Err(); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (s *RedisStore) ListResults(ctx context.Context, userID string) ([]quiz.Result, error) {
	items, err := s.client.LRange(ctx, s.resultsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	results := make([]quiz.Result, 0, len(items))
	for _, item := range items {
		var r quiz.Result
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("parse result: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}
