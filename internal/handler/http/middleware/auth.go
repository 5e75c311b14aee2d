package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// Actor is the authenticated caller.
type Actor struct {
	EmployeeID string
	Role       user.Role
}

type actorKey struct{}

// ActorFromContext returns the actor stored by AuthRequired.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// AuthRequired rejects requests without a verified access token carrying an
// employee_id claim. It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		tokenType, ok := claims[jwt.ClaimType].(string)
		if tokenType != jwt.TokenTypeAccess || !ok {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		employeeID, ok := claims[jwt.ClaimEmployeeID].(string)
		if !ok || employeeID == "" {
			response.HandleError(w, user.ErrEmployeeClaimMissing)
			return
		}

		role, _ := claims[jwt.ClaimRole].(string)
		ctx := context.WithValue(r.Context(), actorKey{}, Actor{
			EmployeeID: employeeID,
			Role:       user.Role(role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
