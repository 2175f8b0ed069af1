package db

import (
	"fmt"

	"postpilot/internal/auth"
	"postpilot/internal/linkedin"
	"postpilot/internal/posts"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&linkedin.Token{},
		&linkedin.Profile{},
		&posts.ScheduledPost{},
	); err != nil {
		return err
	}

	// The claim query filters on (status, scheduled_at); everything else is
	// per-user listing.
	stmts := []string{
		`create index if not exists idx_scheduled_posts_due on scheduled_posts(status, scheduled_at);`,
		`create index if not exists idx_scheduled_posts_user on scheduled_posts(user_id, scheduled_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
