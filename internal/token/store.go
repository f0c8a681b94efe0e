package token

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pyomin/bluecool-admin/pkg/jwt"
)

// Slot a durable key-value slot (state.db)
type Slot struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name for Slot
func (Slot) TableName() string {
	return "slots"
}

const (
	slotAccessToken = "access_token"
	slotTheme       = "theme"
)

// Theme preference values
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// ErrInvalidTheme unknown colour-scheme value
var ErrInvalidTheme = errors.New("theme must be one of system, light, dark")

// Store holds the bearer credential across two tiers: a durable sqlite
// slot table ("remember me") and a process-memory map (session-scoped).
// Invariant: at most one tier holds the token at any time.
type Store struct {
	mu        sync.Mutex
	db        *gorm.DB
	ephemeral map[string]string
}

// NewStore opens (and migrates) the operator state file at path
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("token: failed to create state dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("token: failed to open state db: %w", err)
	}

	return NewStoreWithDB(db)
}

// NewStoreWithDB wraps an existing gorm connection (tests use :memory:)
func NewStoreWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("token: migration failed: %w", err)
	}

	return &Store{
		db:        db,
		ephemeral: make(map[string]string),
	}, nil
}

// Set writes the token to the durable tier when remember is true and to
// the ephemeral tier otherwise. The opposite tier is always emptied.
func (s *Store) Set(token string, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if remember {
		delete(s.ephemeral, slotAccessToken)
		return s.putSlot(slotAccessToken, token)
	}

	s.ephemeral[slotAccessToken] = token
	return s.deleteSlot(slotAccessToken)
}

// Get returns the stored token, durable tier first, or "" when empty
func (s *Store) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.getSlot(slotAccessToken); ok {
		return v
	}
	return s.ephemeral[slotAccessToken]
}

// Clear removes the token from both tiers
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ephemeral, slotAccessToken)
	return s.deleteSlot(slotAccessToken)
}

// PruneExpired drops a remembered token whose exp claim already passed,
// so startup does not present a credential the server is known to
// reject. Returns true when a token was dropped.
func (s *Store) PruneExpired() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getSlot(slotAccessToken)
	if !ok || !jwt.IsExpired(v) {
		return false, nil
	}

	if err := s.deleteSlot(slotAccessToken); err != nil {
		return false, err
	}
	return true, nil
}

// Theme returns the colour-scheme preference, defaulting to "system"
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.getSlot(slotTheme); ok {
		return v
	}
	return ThemeSystem
}

// SetTheme stores the colour-scheme preference
func (s *Store) SetTheme(theme string) error {
	switch theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return ErrInvalidTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putSlot(slotTheme, theme)
}

func (s *Store) putSlot(key, value string) error {
	slot := Slot{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Save(&slot).Error
}

func (s *Store) getSlot(key string) (string, bool) {
	var slot Slot
	err := s.db.First(&slot, "key = ?", key).Error
	if err != nil {
		return "", false
	}
	return slot.Value, true
}

func (s *Store) deleteSlot(key string) error {
	return s.db.Delete(&Slot{}, "key = ?", key).Error
}
