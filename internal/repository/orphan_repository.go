package repository

import (
	"context"

	redisapp "github.com/cleverframework/clever-v0-galleries/internal/storage/redis"
)

const orphansKey = "galleries:orphans"

// RedisOrphanRepo хранит ссылки на файлы, которые не удалось удалить вместе с галереей
type RedisOrphanRepo struct {
	Client *redisapp.Client
}

func NewRedisOrphanRepo(client *redisapp.Client) *RedisOrphanRepo {
	return &RedisOrphanRepo{Client: client}
}

func (r *RedisOrphanRepo) AddOrphans(ctx context.Context, refs ...string) error {
	if len(refs) == 0 {
		return nil
	}
	return r.Client.SAdd(ctx, orphansKey, toMembers(refs)...).Err()
}

func (r *RedisOrphanRepo) GetOrphans(ctx context.Context) ([]string, error) {
	return r.Client.SMembers(ctx, orphansKey).Result()
}

func (r *RedisOrphanRepo) RemoveOrphans(ctx context.Context, refs ...string) error {
	if len(refs) == 0 {
		return nil
	}
	return r.Client.SRem(ctx, orphansKey, toMembers(refs)...).Err()
}

func toMembers(refs []string) []interface{} {
	members := make([]interface{}, len(refs))
	for i, ref := range refs {
		members[i] = ref
	}
	return members
}
