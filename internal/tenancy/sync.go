package tenancy

import (
	"agency-portal/internal/model"

	"gorm.io/gorm"
)

// SyncResult reports what a reconciliation changed.
type SyncResult struct {
	Added   []uint `json:"added"`
	Removed []uint `json:"removed"`
	Primary *uint  `json:"primary,omitempty"`
}

// SyncClientAssociations reconciles a user's client associations to exactly
// the desired set and flags at most one row as primary. The whole
// reconciliation runs in one transaction: a failure partway leaves the
// association set untouched.
//
// A primary id outside the desired set is rejected up front with
// ErrPrimaryNotMember. A nil primary clears every primary flag.
func SyncClientAssociations(db *gorm.DB, userID uint, desired []uint, primary *uint) (*SyncResult, error) {
	want := make(map[uint]bool, len(desired))
	for _, id := range desired {
		want[id] = true
	}
	if primary != nil && !want[*primary] {
		return nil, ErrPrimaryNotMember
	}

	result := &SyncResult{Primary: primary}
	err := db.Transaction(func(tx *gorm.DB) error {
		var current []model.UserClient
		if err := tx.Where("user_id = ?", userID).Find(&current).Error; err != nil {
			return err
		}

		have := make(map[uint]bool, len(current))
		for _, uc := range current {
			have[uc.ClientID] = true
		}

		var toRemove []uint
		for _, uc := range current {
			if !want[uc.ClientID] {
				toRemove = append(toRemove, uc.ClientID)
			}
		}

		var toAdd []uint
		seen := make(map[uint]bool, len(desired))
		for _, id := range desired {
			if !have[id] && !seen[id] {
				toAdd = append(toAdd, id)
				seen[id] = true
			}
		}

		if len(toRemove) > 0 {
			if err := tx.Where("user_id = ? AND client_id IN ?", userID, toRemove).
				Delete(&model.UserClient{}).Error; err != nil {
				return err
			}
		}

		if len(toAdd) > 0 {
			rows := make([]model.UserClient, 0, len(toAdd))
			for _, id := range toAdd {
				rows = append(rows, model.UserClient{UserID: userID, ClientID: id})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		// Reset primary flags across the whole set so retained rows cannot
		// keep a stale flag.
		if err := tx.Model(&model.UserClient{}).
			Where("user_id = ?", userID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		if primary != nil {
			if err := tx.Model(&model.UserClient{}).
				Where("user_id = ? AND client_id = ?", userID, *primary).
				Update("is_primary", true).Error; err != nil {
				return err
			}
		}

		result.Added = toAdd
		result.Removed = toRemove
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
