package db

import (
	"log"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one key of the local key/value store.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

var conn *gorm.DB

// Init opens the package-level connection used by the server.
func Init(path string) error {
	var err error
	conn, err = Open(path, logger.Warn)
	if err != nil {
		return err
	}
	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}

// Open opens (creating if needed) the sqlite file at path.
func Open(path string, level logger.LogLevel) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := gdb.AutoMigrate(&Entry{}); err != nil {
		return nil, errors.Wrap(err, "auto-migrate")
	}
	return gdb, nil
}

// KV is the key/value view over kv_entries.
type KV struct {
	db *gorm.DB
}

func NewKV(gdb *gorm.DB) *KV { return &KV{db: gdb} }

// Get returns the stored value and whether the key exists.
func (kv *KV) Get(key string) (string, bool, error) {
	var e Entry
	err := kv.db.Where(&Entry{Key: key}).Limit(1).Find(&e).Error
	if err != nil {
		return "", false, errors.Wrapf(err, "kv get %q", key)
	}
	if e.Key == "" {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Put inserts or overwrites key. Last write wins.
func (kv *KV) Put(key, value string) error {
	e := Entry{Key: key, Value: value}
	err := kv.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return errors.Wrapf(err, "kv put %q", key)
}

func (kv *KV) Delete(key string) error {
	return errors.Wrapf(kv.db.Delete(&Entry{Key: key}).Error, "kv delete %q", key)
}
