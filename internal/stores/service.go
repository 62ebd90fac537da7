package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/memberships"
	"github.com/billy17-netizen/posvougher-sub002/internal/users"
	"github.com/billy17-netizen/posvougher-sub002/pkg/config"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/security"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

var storeManagerRoles = []enums.MemberRole{enums.MemberRoleAdmin, enums.MemberRoleSuperAdmin}

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	List(ctx context.Context) ([]models.Store, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)
	ListSettings(ctx context.Context, storeID uuid.UUID) ([]models.StoreSetting, error)
	UpsertSetting(ctx context.Context, storeID uuid.UUID, key enums.SettingKey, value string) error
}

type membershipsRepository interface {
	UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error)
	IsActiveMember(ctx context.Context, userID, storeID uuid.UUID) (bool, error)
	ListStoreUsers(ctx context.Context, storeID uuid.UUID) ([]memberships.StoreUserDTO, error)
	GetMembership(ctx context.Context, userID, storeID uuid.UUID) (*models.StoreMembership, error)
	CreateMembership(ctx context.Context, storeID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.StoreMembership, error)
	DeleteMembership(ctx context.Context, storeID, userID uuid.UUID) (int64, error)
}

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// Service exposes store profile, settings, and staffing operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	GetSettings(ctx context.Context, userID, storeID uuid.UUID) (SettingsDTO, error)
	PutSettings(ctx context.Context, userID, storeID uuid.UUID, values map[string]string) (SettingsDTO, error)
	ListUsers(ctx context.Context, userID, storeID uuid.UUID) ([]memberships.StoreUserDTO, error)
	InviteUser(ctx context.Context, inviterID, storeID uuid.UUID, input InviteUserInput) (*memberships.StoreUserDTO, string, error)
	RemoveUser(ctx context.Context, actorID, storeID, targetUserID uuid.UUID) error

	// Admin surface, guarded by the superadmin role at the router.
	CreateStore(ctx context.Context, input CreateStoreDTO) (*StoreDTO, error)
	ListStores(ctx context.Context) ([]StoreDTO, error)
	SetStoreActive(ctx context.Context, storeID uuid.UUID, active bool) (*StoreDTO, error)
}

type service struct {
	repo        storeRepository
	memberships membershipsRepository
	users       usersRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a store service with the provided repositories.
func NewService(repo storeRepository, membershipsRepo membershipsRepository, usersRepo usersRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo:        repo,
		memberships: membershipsRepo,
		users:       usersRepo,
		passwordCfg: passwordCfg,
	}, nil
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
	TaxRate *types.Money
}

// InviteUserInput captures the data required to invite a store user.
type InviteUserInput struct {
	Email string
	Name  string
	Role  enums.MemberRole
}

func (s *service) requireManager(ctx context.Context, userID, storeID uuid.UUID) error {
	ok, err := s.memberships.UserHasRole(ctx, userID, storeID, storeManagerRoles...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient store role")
	}
	return nil
}

func (s *service) requireMember(ctx context.Context, userID, storeID uuid.UUID) error {
	ok, err := s.memberships.IsActiveMember(ctx, userID, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a store member")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	if err := s.requireManager(ctx, userID, storeID); err != nil {
		return nil, err
	}

	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		store.Name = name
	}
	if input.Address != nil {
		store.Address = cloneStringPtr(input.Address)
	}
	if input.Phone != nil {
		store.Phone = cloneStringPtr(input.Phone)
	}
	if input.Email != nil {
		store.Email = cloneStringPtr(input.Email)
	}
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
		}
		store.TaxRate = *input.TaxRate
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) GetSettings(ctx context.Context, userID, storeID uuid.UUID) (SettingsDTO, error) {
	if err := s.requireMember(ctx, userID, storeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSettings(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return SettingsFromRows(rows), nil
}

func (s *service) PutSettings(ctx context.Context, userID, storeID uuid.UUID, values map[string]string) (SettingsDTO, error) {
	if err := s.requireManager(ctx, userID, storeID); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no settings provided")
	}

	for raw, value := range values {
		key, err := enums.ParseSettingKey(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown setting key")
		}
		if err := s.repo.UpsertSetting(ctx, storeID, key, value); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
		}
	}

	rows, err := s.repo.ListSettings(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return SettingsFromRows(rows), nil
}

func (s *service) ListUsers(ctx context.Context, userID, storeID uuid.UUID) ([]memberships.StoreUserDTO, error) {
	if err := s.requireManager(ctx, userID, storeID); err != nil {
		return nil, err
	}
	rows, err := s.memberships.ListStoreUsers(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store users")
	}
	return rows, nil
}

func (s *service) InviteUser(ctx context.Context, inviterID, storeID uuid.UUID, input InviteUserInput) (*memberships.StoreUserDTO, string, error) {
	if err := s.requireManager(ctx, inviterID, storeID); err != nil {
		return nil, "", err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	role := input.Role
	if role == "" {
		role = enums.MemberRoleCashier
	}
	if !role.IsValid() || role == enums.MemberRoleSuperAdmin {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	var tempPassword string
	target, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
		}
		target, tempPassword, err = s.createNewUser(ctx, email, input.Name, role)
		if err != nil {
			return nil, "", err
		}
	}

	if _, err := s.memberships.GetMembership(ctx, target.ID, storeID); err == nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "user is already a store member")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	if _, err := s.memberships.CreateMembership(ctx, storeID, target.ID, role, &inviterID, enums.MembershipStatusInvited); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	dto, err := s.fetchStoreUser(ctx, storeID, target.ID)
	if err != nil {
		return nil, "", err
	}
	return dto, tempPassword, nil
}

func (s *service) RemoveUser(ctx context.Context, actorID, storeID, targetUserID uuid.UUID) error {
	if err := s.requireManager(ctx, actorID, storeID); err != nil {
		return err
	}
	if actorID == targetUserID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot remove yourself from the store")
	}

	affected, err := s.memberships.DeleteMembership(ctx, storeID, targetUserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove membership")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

func (s *service) CreateStore(ctx context.Context, input CreateStoreDTO) (*StoreDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	store := &models.Store{
		ID:       uuid.New(),
		Name:     name,
		Address:  cloneStringPtr(input.Address),
		Phone:    cloneStringPtr(input.Phone),
		Email:    cloneStringPtr(input.Email),
		Currency: "IDR",
		IsActive: true,
	}
	if input.Currency != nil && strings.TrimSpace(*input.Currency) != "" {
		store.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
		}
		store.TaxRate = *input.TaxRate
	}

	created, err := s.repo.Create(ctx, store)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return FromModel(created), nil
}

func (s *service) ListStores(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) SetStoreActive(ctx context.Context, storeID uuid.UUID, active bool) (*StoreDTO, error) {
	affected, err := s.repo.SetActive(ctx, storeID, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return s.GetByID(ctx, storeID)
}

func (s *service) createNewUser(ctx context.Context, email, name string, role enums.MemberRole) (*models.User, string, error) {
	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, tempPassword, nil
}

func (s *service) fetchStoreUser(ctx context.Context, storeID, userID uuid.UUID) (*memberships.StoreUserDTO, error) {
	rows, err := s.memberships.ListStoreUsers(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store users")
	}
	for _, row := range rows {
		if row.UserID == userID {
			return &row, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
}
