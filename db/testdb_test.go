package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chatlyhq/chatly/models"
)

func newTestDB(t *testing.T) *GormDB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("could not get sql.DB: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(gdb); err != nil {
		t.Fatalf("could not migrate: %v", err)
	}
	return &GormDB{DB: gdb}
}

func seedUser(t *testing.T, gdb *GormDB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, HashedPassword: "x"}
	if err := gdb.DB.Create(user).Error; err != nil {
		t.Fatalf("could not seed user %s: %v", name, err)
	}
	return user
}
