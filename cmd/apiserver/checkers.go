package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openhaven/matchgrid/internal/infrastructure/database/redis"
)

type poolChecker struct {
	pool *pgxpool.Pool
}

func (p poolChecker) Name() string                    { return "postgres" }
func (p poolChecker) Check(ctx context.Context) error { return p.pool.Ping(ctx) }

type redisChecker struct {
	client *redis.Client
}

func (r redisChecker) Name() string                    { return "redis" }
func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx) }
