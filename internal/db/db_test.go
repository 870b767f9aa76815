package db_test

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm/logger"

	"github.com/zat/initiative/internal/db"
)

// TestWALMode verifies that the DSN parameters in Open enable WAL journal mode.
func TestWALMode(t *testing.T) {
	gdb, err := db.Open(filepath.Join(t.TempDir(), "wal_test.db"), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}
}

func TestKVPutGet(t *testing.T) {
	gdb, err := db.Open(filepath.Join(t.TempDir(), "kv.db"), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	kv := db.NewKV(gdb)

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing): ok=%v err=%v", ok, err)
	}

	if err := kv.Put("zat_initiative_auth", "false"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// second write to the same key must overwrite, not duplicate
	if err := kv.Put("zat_initiative_auth", "true"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	v, ok, err := kv.Get("zat_initiative_auth")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if v != "true" {
		t.Errorf("want last write %q, got %q", "true", v)
	}

	var n int64
	gdb.Model(&db.Entry{}).Count(&n)
	if n != 1 {
		t.Errorf("expected 1 row after overwrite, got %d", n)
	}

	if err := kv.Delete("zat_initiative_auth"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get("zat_initiative_auth"); ok {
		t.Error("key still present after Delete")
	}
}

func TestInit(t *testing.T) {
	if err := db.Init(filepath.Join(t.TempDir(), "init.db")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if db.Conn() == nil {
		t.Fatal("Conn() is nil after Init")
	}
	if !db.Conn().Migrator().HasTable(&db.Entry{}) {
		t.Error("kv_entries table missing after Init")
	}
}
