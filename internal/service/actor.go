package service

import (
	"context"
	"strings"

	"github.com/spec-kit/servicedesk/internal/domain"
)

type actorKey struct{}

// WithActor tags ctx with who is making a change, for the audit trail.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor set by WithActor, or the system actor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && strings.TrimSpace(actor) != "" {
		return actor
	}
	return domain.ActorSystem
}
