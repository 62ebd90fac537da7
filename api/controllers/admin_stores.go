package controllers

import (
	"net/http"

	"github.com/billy17-netizen/posvougher-sub002/api/responses"
	"github.com/billy17-netizen/posvougher-sub002/api/validators"
	"github.com/billy17-netizen/posvougher-sub002/internal/stores"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

type createStoreRequest struct {
	Name     string       `json:"name" validate:"required,min=1,max=200"`
	Address  *string      `json:"address,omitempty"`
	Phone    *string      `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email    *string      `json:"email,omitempty" validate:"omitempty,email"`
	TaxRate  *types.Money `json:"taxRate,omitempty"`
	Currency *string      `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// AdminStoreCreate provisions a new store. Superadmin only.
func AdminStoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		var body createStoreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.CreateStore(r.Context(), stores.CreateStoreDTO{
			Name:     body.Name,
			Address:  body.Address,
			Phone:    body.Phone,
			Email:    body.Email,
			TaxRate:  body.TaxRate,
			Currency: body.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

func AdminStoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		list, err := svc.ListStores(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminStoreActivate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return setStoreActive(svc, logg, true)
}

func AdminStoreDeactivate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return setStoreActive(svc, logg, false)
}

func setStoreActive(svc stores.Service, logg *logger.Logger, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.SetStoreActive(r.Context(), storeID, active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}
