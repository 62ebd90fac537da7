package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetMembership retrieves a membership by user and store.
func (r *Repository) GetMembership(ctx context.Context, userID, storeID uuid.UUID) (*models.StoreMembership, error) {
	var membership models.StoreMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, storeID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.StoreMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid membership status %q", status)
	}

	membership := &models.StoreMembership{
		ID:              uuid.New(),
		StoreID:         storeID,
		UserID:          userID,
		Role:            role,
		Status:          status,
		InvitedByUserID: invitedBy,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// DeleteMembership removes a user from a store.
func (r *Repository) DeleteMembership(ctx context.Context, storeID, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Delete(&models.StoreMembership{})
	return result.RowsAffected, result.Error
}

// UserHasRole reports whether the user holds one of the provided roles for the store.
func (r *Repository) UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("user_id = ? AND store_id = ? AND role IN ? AND status = ?", userID, storeID, roles, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsActiveMember reports whether the user is an active member of the store.
func (r *Repository) IsActiveMember(ctx context.Context, userID, storeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Where("user_id = ? AND store_id = ? AND status = ?", userID, storeID, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUserStores returns the stores a user belongs to along with membership metadata.
func (r *Repository) ListUserStores(ctx context.Context, userID uuid.UUID) ([]MembershipWithStore, error) {
	var rows []membershipWithStoreRow
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Select("store_memberships.*, stores.name AS store_name, stores.currency AS store_currency, stores.is_active AS store_is_active").
		Joins("JOIN stores ON stores.id = store_memberships.store_id").
		Where("store_memberships.user_id = ?", userID).
		Order("stores.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return membershipRowsToDTO(rows), nil
}

// ListStoreUsers returns memberships for the store along with user metadata.
func (r *Repository) ListStoreUsers(ctx context.Context, storeID uuid.UUID) ([]StoreUserDTO, error) {
	var rows []storeUserRow
	err := r.db.WithContext(ctx).
		Model(&models.StoreMembership{}).
		Select("store_memberships.*, users.name AS user_name, users.email, users.last_login_at").
		Joins("JOIN users ON users.id = store_memberships.user_id").
		Where("store_memberships.store_id = ?", storeID).
		Order("store_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return storeUsersFromRows(rows), nil
}
