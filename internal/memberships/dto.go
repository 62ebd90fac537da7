package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID              uuid.UUID              `json:"id"`
	StoreID         uuid.UUID              `json:"storeId"`
	UserID          uuid.UUID              `json:"userId"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.MembershipStatus `json:"status"`
	InvitedByUserID *uuid.UUID             `json:"invitedByUserId,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// MembershipWithStore includes basic store metadata + membership info.
type MembershipWithStore struct {
	MembershipID  uuid.UUID              `json:"membershipId"`
	StoreID       uuid.UUID              `json:"storeId"`
	UserID        uuid.UUID              `json:"userId"`
	StoreName     string                 `json:"storeName"`
	StoreCurrency string                 `json:"storeCurrency"`
	StoreIsActive bool                   `json:"storeIsActive"`
	Role          enums.MemberRole       `json:"role"`
	Status        enums.MembershipStatus `json:"status"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// StoreUserDTO mixes membership metadata with the associated user profile for store admins.
type StoreUserDTO struct {
	MembershipID uuid.UUID              `json:"membershipId"`
	StoreID      uuid.UUID              `json:"storeId"`
	UserID       uuid.UUID              `json:"userId"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Role         enums.MemberRole       `json:"role"`
	Status       enums.MembershipStatus `json:"membershipStatus"`
	CreatedAt    time.Time              `json:"createdAt"`
	LastLoginAt  *time.Time             `json:"lastLoginAt,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.StoreMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:              m.ID,
		StoreID:         m.StoreID,
		UserID:          m.UserID,
		Role:            m.Role,
		Status:          m.Status,
		InvitedByUserID: copyUUIDPointer(m.InvitedByUserID),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
