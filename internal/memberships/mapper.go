package memberships

import (
	"time"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
)

type membershipWithStoreRow struct {
	models.StoreMembership
	StoreName     string `gorm:"column:store_name"`
	StoreCurrency string `gorm:"column:store_currency"`
	StoreIsActive bool   `gorm:"column:store_is_active"`
}

func membershipWithStoreFromRow(row membershipWithStoreRow) MembershipWithStore {
	return MembershipWithStore{
		MembershipID:  row.ID,
		StoreID:       row.StoreID,
		UserID:        row.UserID,
		StoreName:     row.StoreName,
		StoreCurrency: row.StoreCurrency,
		StoreIsActive: row.StoreIsActive,
		Role:          row.Role,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func membershipRowsToDTO(rows []membershipWithStoreRow) []MembershipWithStore {
	out := make([]MembershipWithStore, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithStoreFromRow(row))
	}
	return out
}

type storeUserRow struct {
	models.StoreMembership
	UserName    string     `gorm:"column:user_name"`
	Email       string     `gorm:"column:email"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func storeUsersFromRows(rows []storeUserRow) []StoreUserDTO {
	out := make([]StoreUserDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StoreUserDTO{
			MembershipID: row.ID,
			StoreID:      row.StoreID,
			UserID:       row.UserID,
			Name:         row.UserName,
			Email:        row.Email,
			Role:         row.Role,
			Status:       row.Status,
			CreatedAt:    row.CreatedAt,
			LastLoginAt:  row.LastLoginAt,
		})
	}
	return out
}
