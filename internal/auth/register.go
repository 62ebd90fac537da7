package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/memberships"
	"github.com/billy17-netizen/posvougher-sub002/internal/stores"
	"github.com/billy17-netizen/posvougher-sub002/internal/users"
	"github.com/billy17-netizen/posvougher-sub002/pkg/config"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/security"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

const minPasswordLen = 8

// RegisterRequest onboards an owner account together with their first store.
type RegisterRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	StoreName string  `json:"storeName" validate:"required"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// RegisterResponse reports what the onboarding transaction created.
type RegisterResponse struct {
	User  *users.UserDTO `json:"user"`
	Store StoreSummary   `json:"store"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the registration dependencies.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the user, their store, and an admin membership in one
// atomic unit. A failure at any step leaves no orphan rows behind.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	storeName := strings.TrimSpace(req.StoreName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if storeName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var response *RegisterResponse
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		membershipRepo := memberships.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         enums.MemberRoleAdmin,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		store := &models.Store{
			ID:       uuid.New(),
			Name:     storeName,
			Address:  req.Address,
			Phone:    req.Phone,
			TaxRate:  types.MoneyFromInt(0),
			Currency: "IDR",
			IsActive: true,
		}
		if _, err := stores.NewRepository(tx).Create(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
		}

		if _, err := membershipRepo.CreateMembership(
			ctx,
			store.ID,
			user.ID,
			enums.MemberRoleAdmin,
			nil,
			enums.MembershipStatusActive,
		); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}

		response = &RegisterResponse{
			User: users.FromModel(user),
			Store: StoreSummary{
				ID:       store.ID,
				Name:     store.Name,
				Currency: store.Currency,
				IsActive: store.IsActive,
			},
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return response, nil
}
