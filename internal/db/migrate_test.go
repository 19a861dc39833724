package db

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func TestMigrateVersionsLegacyStateRow(t *testing.T) {
	gdb, err := OpenDialector(sqlite.Open(filepath.Join(t.TempDir(), "legacy.db")), logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Layout of databases from before versioning
	if err := gdb.Exec(`CREATE TABLE app_state (
		id integer PRIMARY KEY,
		data text NOT NULL,
		updated_at datetime
	)`).Error; err != nil {
		t.Fatal(err)
	}
	if err := gdb.Exec(`INSERT INTO app_state (id, data, updated_at) VALUES (1, '{"tables":[]}', CURRENT_TIMESTAMP)`).Error; err != nil {
		t.Fatal(err)
	}

	if err := Migrate(gdb); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	var version int64
	if err := gdb.Raw("SELECT version FROM app_state WHERE id = 1").Scan(&version).Error; err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Errorf("legacy version = %d, want 1", version)
	}

	// Running again leaves versioned rows alone
	if err := gdb.Exec("UPDATE app_state SET version = 5").Error; err != nil {
		t.Fatal(err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatal(err)
	}
	_ = gdb.Raw("SELECT version FROM app_state WHERE id = 1").Scan(&version)
	if version != 5 {
		t.Errorf("version = %d after second migrate, want 5", version)
	}
}
