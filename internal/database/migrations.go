package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Mission filtering and search
		{"missions", "idx_missions_status", "status"},
		{"missions", "idx_missions_creator_id", "creator_id"},
		{"missions", "idx_missions_assigned_designer_id", "assigned_designer_id"},
		{"missions", "idx_missions_category", "category"},
		{"missions", "idx_missions_created_at", "created_at"},

		// Lifecycle lookups
		{"proposals", "idx_proposals_mission_status", "mission_id, status"},
		{"deliveries", "idx_deliveries_mission_status", "mission_id, status"},
		{"deliveries", "idx_deliveries_protected_ref", "protected_ref"},

		// Messaging
		{"messages", "idx_messages_channel_id", "channel_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
