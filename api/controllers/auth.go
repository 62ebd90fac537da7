package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/api/middleware"
	"github.com/billy17-netizen/posvougher-sub002/api/responses"
	"github.com/billy17-netizen/posvougher-sub002/api/validators"
	"github.com/billy17-netizen/posvougher-sub002/internal/auth"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
)

// storeCookieMaxAge keeps the active-store cookie alive for thirty days.
const storeCookieMaxAge = 30 * 24 * 60 * 60

// AuthRegister onboards a new owner account with their first store.
func AuthRegister(svc auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if len(result.Stores) == 1 {
			setStoreCookie(w, result.Stores[0].ID)
		}
		responses.WriteSuccess(w, result)
	}
}

func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pair)
	}
}

// AuthLogout revokes the caller's session. It sits behind the Auth
// middleware, so the access id is always present in the context.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clearStoreCookie(w)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

type switchStoreRequest struct {
	StoreID      uuid.UUID `json:"storeId" validate:"required"`
	RefreshToken string    `json:"refreshToken" validate:"required"`
}

func AuthSwitchStore(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		userID, err := userFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body switchStoreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SwitchStore(r.Context(), auth.SwitchStoreInput{
			UserID:       userID,
			StoreID:      body.StoreID,
			AccessID:     middleware.AccessIDFromContext(r.Context()),
			RefreshToken: body.RefreshToken,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setStoreCookie(w, result.Store.ID)
		responses.WriteSuccess(w, result)
	}
}

func setStoreCookie(w http.ResponseWriter, storeID uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.StoreCookieName,
		Value:    storeID.String(),
		Path:     "/",
		MaxAge:   storeCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearStoreCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.StoreCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
