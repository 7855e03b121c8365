package usage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
)

// limitResponse is the 429 body contract route handlers rely on.
type limitResponse struct {
	Error      string  `json:"error"`
	UsageLimit bool    `json:"usageLimit"`
	Usage      Status  `json:"usage"`
	Plan       plan.ID `json:"plan"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Gate returns middleware that blocks the request with 429 when the user's
// quota for f is exhausted. Identity must already be in the request context.
//
// The check is read-only: on allow, the wrapped handler performs the metered
// action and must call IncrementUsage itself once the action succeeds, so
// failed actions never consume quota. Storage failures fail closed with 503.
func Gate(svc *Service, f plan.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentityFromContext(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
				return
			}

			decision, err := svc.CanUseFeature(r.Context(), identity.ID, f)
			if err != nil {
				switch {
				case errors.Is(err, ErrInvalidFeature):
					writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
				case errors.Is(err, ErrUserNotFound):
					writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
				default:
					// Fail closed: an unreachable ledger must never grant
					// free passes.
					writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable"})
				}
				return
			}

			if !decision.Allowed {
				writeJSON(w, http.StatusTooManyRequests, limitResponse{
					Error:      LimitMessage(f, decision.PlanID, r.Header.Get("Accept-Language")),
					UsageLimit: true,
					Usage:      decision.Usage,
					Plan:       decision.PlanID,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
