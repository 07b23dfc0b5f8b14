package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	utilsContext "github.com/stocklane/inventory/utils/context"
)

// ActorMiddleware embeds the acting user from the X-Actor-ID header into the
// request context. The upstream gateway authenticates and sets the header;
// requests without it are attributed to the system actor.
func ActorMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actorID := r.Header.Get("X-Actor-ID"); actorID != "" {
				r = r.WithContext(utilsContext.WithActorID(r.Context(), actorID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
