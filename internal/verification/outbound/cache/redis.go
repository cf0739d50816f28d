package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
	ins    instrument.Instrumentation
}

func NewRedis(client *redis.Client, ttl time.Duration, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ttl: ttlOrDefault(ttl), ins: ins}
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("verification.outbound.cache").Start(ctx, name)
}

func (r *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *Redis) Get(ctx context.Context, email string) (_ *entity.Request, err error) {
	ctx, span := r.startSpan(ctx, "Get")
	defer func() { r.endSpan(span, err) }()

	raw, err := r.client.Get(ctx, keyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var req entity.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	return &req, nil
}

// Put writes req with a fresh TTL and reports whether a value was replaced.
func (r *Redis) Put(ctx context.Context, req entity.Request) (_ bool, err error) {
	ctx, span := r.startSpan(ctx, "Put")
	defer func() { r.endSpan(span, err) }()

	raw, err := json.Marshal(req)
	if err != nil {
		return false, err
	}

	err = r.client.SetArgs(ctx, keyPrefix+req.Email, raw, redis.SetArgs{TTL: r.ttl, Get: true}).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *Redis) Delete(ctx context.Context, email string) (err error) {
	ctx, span := r.startSpan(ctx, "Delete")
	defer func() { r.endSpan(span, err) }()

	return r.client.Del(ctx, keyPrefix+email).Err()
}
