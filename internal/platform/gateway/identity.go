package gateway

import (
	"net/http"
	"strings"

	"github.com/bvs-supply/api/internal/platform/requestctx"
)

// Header names set by the upstream gateway after it has authenticated the caller.
const (
	HotelIDHeader = "X-BVS-Hotel-ID"
	ActorIDHeader = "X-BVS-Actor-ID"
)

// IdentityMiddleware copies the gateway identity headers onto the request context.
// The gateway strips these headers from external traffic, so their presence is
// authoritative here.
func IdentityMiddleware(next http.Handler) http.Handler {
	if next == nil {
		next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := requestctx.Identity{
			HotelID: strings.TrimSpace(r.Header.Get(HotelIDHeader)),
			ActorID: strings.TrimSpace(r.Header.Get(ActorIDHeader)),
		}
		if identity.HotelID == "" && identity.ActorID == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := requestctx.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
