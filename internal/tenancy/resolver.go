package tenancy

import (
	"fmt"

	"agency-portal/internal/model"

	"gorm.io/gorm"
)

// ResolveActiveClient determines which tenant the current request operates
// on. Client-role users are pinned to their own client id and any override is
// ignored. Employees and admins must supply an override, and it must be a
// member of their association set; admins get no exemption from the
// membership check.
//
// The result must be resolved fresh on every request and never reused across
// principals.
func ResolveActiveClient(db *gorm.DB, profile *model.Profile, override *uint) (uint, error) {
	switch profile.Role {
	case model.RoleClient:
		if profile.ClientID == nil {
			return 0, ErrClientAssociationMissing
		}
		return *profile.ClientID, nil

	case model.RoleEmployee, model.RoleAdmin:
		if override == nil {
			return 0, ErrActiveClientRequired
		}
		var count int64
		err := db.Model(&model.UserClient{}).
			Where("user_id = ? AND client_id = ?", profile.UserID, *override).
			Count(&count).Error
		if err != nil {
			return 0, fmt.Errorf("checking client association: %w", err)
		}
		if count == 0 {
			return 0, ErrNotAssociated
		}
		return *override, nil

	default:
		return 0, fmt.Errorf("role %q cannot be scoped to a client: %w", profile.Role, ErrInsufficientRole)
	}
}
