package context

import (
	"context"

	"github.com/stocklane/inventory/constant"
)

// GetActorID returns the acting user from the request context, falling back
// to the system actor so automated paths stay attributable in history.
func GetActorID(ctx context.Context) string {
	v := ctx.Value(constant.ActorIDKey)
	if v == nil {
		return constant.SystemActorID
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return constant.SystemActorID
	}
	return id
}

func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, constant.ActorIDKey, actorID)
}
