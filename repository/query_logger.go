package repository

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/zelvyn/zelvyn-api"
)

// QueryLogger is a bun.QueryHook that logs every statement at debug level
type QueryLogger struct {
	Logger auth.Logger
}

var _ bun.QueryHook = (*QueryLogger)(nil)

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{
		"op", event.Operation(),
		"duration", time.Since(event.StartTime),
		"query", event.Query,
	}
	if event.Err != nil {
		h.Logger.Debug("query failed", append(args, "error", event.Err)...)
		return
	}
	h.Logger.Debug("query", args...)
}
