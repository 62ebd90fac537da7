package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/api/responses"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
)

// StoreCookieName is the fallback cookie carrying the active store id.
const StoreCookieName = "posvougher_store"

// MembershipChecker verifies that a user is an active member of a store.
type MembershipChecker interface {
	IsActiveMember(ctx context.Context, userID, storeID uuid.UUID) (bool, error)
}

// StoreContext resolves the active store exactly once per request. Resolution
// order: JWT claim (already in context from Auth), then the storeId query
// parameter, then the posvougher_store cookie. A claim-carried store id was
// membership-checked when the token was minted; the query and cookie
// fallbacks are client-controlled, so they are accepted only after an
// explicit membership check (superadmins excepted). Handlers downstream read
// the store id from the context and never reparse the request.
func StoreContext(members MembershipChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID := StoreIDFromContext(r.Context())
			fromClaim := storeID != ""

			if storeID == "" {
				storeID = strings.TrimSpace(r.URL.Query().Get("storeId"))
			}
			if storeID == "" {
				if cookie, err := r.Cookie(StoreCookieName); err == nil {
					storeID = strings.TrimSpace(cookie.Value)
				}
			}

			if storeID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
				return
			}
			storeUUID, err := uuid.Parse(storeID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid store id"))
				return
			}

			if !fromClaim && RoleFromContext(r.Context()) != enums.MemberRoleSuperAdmin.String() {
				userID, err := uuid.Parse(UserIDFromContext(r.Context()))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
					return
				}
				if members == nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership checker unavailable"))
					return
				}
				ok, err := members.IsActiveMember(r.Context(), userID, storeUUID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this store"))
					return
				}
			}

			ctx := WithStoreID(r.Context(), storeID)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, storeID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
