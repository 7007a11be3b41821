package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes creates the indexes the hot paths depend on. Safe to run on
// every boot.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Trash queries: expiry sweep filters on (status, trashed_at),
		// the trashed listing on (status, created_by).
		{"tasks", "idx_tasks_status_trashed_at", "status, trashed_at"},
		{"tasks", "idx_tasks_status_created_by", "status, created_by"},

		{"tasks", "idx_tasks_assigned_to", "assigned_to"},
		{"tasks", "idx_tasks_department_id", "department_id"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		{"notifications", "idx_notifications_employee_read", "employee_id, is_read"},
	}

	for _, idx := range indexes {
		sql := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
