package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/memberships"
	"github.com/billy17-netizen/posvougher-sub002/internal/users"
	pkgauth "github.com/billy17-netizen/posvougher-sub002/pkg/auth"
	"github.com/billy17-netizen/posvougher-sub002/pkg/auth/session"
	"github.com/billy17-netizen/posvougher-sub002/pkg/config"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service covers the session lifecycle: login, refresh, logout, and
// re-scoping the token to a different store.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
	SwitchStore(ctx context.Context, input SwitchStoreInput) (*SwitchStoreResponse, error)
}

// SwitchStoreInput identifies the caller and the store they want active.
type SwitchStoreInput struct {
	UserID       uuid.UUID
	StoreID      uuid.UUID
	AccessID     string
	RefreshToken string
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type membershipsRepository interface {
	ListUserStores(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithStore, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies of the session service.
type ServiceParams struct {
	UserRepo        userRepository
	MembershipsRepo membershipsRepository
	SessionManager  sessionManager
	JWTConfig       config.JWTConfig
}

type service struct {
	users       userRepository
	memberships membershipsRepository
	session     sessionManager
	jwtCfg      config.JWTConfig
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.MembershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:       params.UserRepo,
		memberships: params.MembershipsRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		now:         time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	userStores, err := s.memberships.ListUserStores(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	if len(userStores) == 0 && user.Role != enums.MemberRoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	stores := make([]StoreSummary, 0, len(userStores))
	for _, m := range userStores {
		if m.Status != enums.MembershipStatusActive {
			continue
		}
		stores = append(stores, StoreSummary{
			ID:       m.StoreID,
			Name:     m.StoreName,
			Currency: m.StoreCurrency,
			IsActive: m.StoreIsActive,
		})
	}

	// A single-store cashier lands scoped to that store right away; anyone
	// with several stores picks one through switch-store.
	role := user.Role
	var activeStoreID *uuid.UUID
	if len(stores) == 1 {
		id := stores[0].ID
		activeStoreID = &id
		for _, m := range userStores {
			if m.StoreID == id && m.Status == enums.MembershipStatusActive {
				role = m.Role
				break
			}
		}
	}
	if user.Role == enums.MemberRoleSuperAdmin {
		role = enums.MemberRoleSuperAdmin
	}

	pair, err := s.issueTokens(ctx, now, pkgauth.AccessTokenPayload{
		UserID:        user.ID,
		ActiveStoreID: activeStoreID,
		Role:          role,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		TokenPair: *pair,
		Stores:    stores,
		User:      users.FromModel(user),
	}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID:        claims.UserID,
		ActiveStoreID: claims.ActiveStoreID,
		Role:          claims.Role,
		JTI:           newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) SwitchStore(ctx context.Context, input SwitchStoreInput) (*SwitchStoreResponse, error) {
	userStores, err := s.memberships.ListUserStores(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}

	var target *memberships.MembershipWithStore
	for i := range userStores {
		if userStores[i].StoreID == input.StoreID {
			target = &userStores[i]
			break
		}
	}
	if target == nil || target.Status != enums.MembershipStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store membership required")
	}
	if !target.StoreIsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store is deactivated")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, input.AccessID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID:        input.UserID,
		ActiveStoreID: &input.StoreID,
		Role:          target.Role,
		JTI:           newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &SwitchStoreResponse{
		TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken},
		Store: StoreSummary{
			ID:       target.StoreID,
			Name:     target.StoreName,
			Currency: target.StoreCurrency,
			IsActive: target.StoreIsActive,
		},
	}, nil
}

func (s *service) issueTokens(ctx context.Context, now time.Time, payload pkgauth.AccessTokenPayload) (*TokenPair, error) {
	accessID := session.NewAccessID()
	payload.JTI = accessID

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
