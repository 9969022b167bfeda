package middleware

import (
	"context"
	"net/http"

	"github.com/minitex/ipregister/internal/api/response"
	"github.com/minitex/ipregister/internal/model"
)

type contextKey string

// ActorKey holds the acting user in the request context.
const ActorKey contextKey = "actor"

// Actor reads the identity headers set by the fronting SSO proxy and stores
// the acting user in the request context. Requests without an identity are
// rejected; the proxy strips these headers from outside traffic.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Actor-Id")
		if id == "" {
			response.WriteError(w, http.StatusUnauthorized, "missing actor identity")
			return
		}

		actor := model.Actor{
			ID:         id,
			GivenName:  r.Header.Get("X-Actor-Given-Name"),
			FamilyName: r.Header.Get("X-Actor-Family-Name"),
			Email:      r.Header.Get("X-Actor-Email"),
			Phone:      r.Header.Get("X-Actor-Phone"),
			Operator:   r.Header.Get("X-Actor-Operator") == "true",
		}

		ctx := context.WithValue(r.Context(), ActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor returns the acting user stored by the Actor middleware.
func GetActor(ctx context.Context) model.Actor {
	actor, _ := ctx.Value(ActorKey).(model.Actor)
	return actor
}
