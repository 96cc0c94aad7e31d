// Package testutil provides shared helpers for service and route tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/database"
)

// NewTestDB opens an isolated in-memory database and runs the shared
// migrations plus any extra models the test needs.
func NewTestDB(t *testing.T, extraModels ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.MigrateSharedOn(db); err != nil {
		t.Fatalf("shared migration: %v", err)
	}
	if len(extraModels) > 0 {
		if err := database.MigrateModels(db, extraModels); err != nil {
			t.Fatalf("model migration: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// TestConfig returns a config with deterministic secrets for tests.
func TestConfig() *config.Config {
	cfg := config.Load()
	cfg.JWTSecret = "test-jwt-secret"
	cfg.EncryptionKey = "test-encryption-key"
	return cfg
}

// SentMail records a single dispatched verification mail.
type SentMail struct {
	To   string
	Code string
}

// FakeMailer captures verification mails instead of sending them. Setting
// Err makes every dispatch fail with that error.
type FakeMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *FakeMailer) SendVerificationCode(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return fmt.Errorf("send mail: %w", m.Err)
	}
	m.Sent = append(m.Sent, SentMail{To: to, Code: code})
	return nil
}

// LastCode returns the code of the most recent mail sent to addr.
func (m *FakeMailer) LastCode(t *testing.T, addr string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].To == addr {
			return m.Sent[i].Code
		}
	}
	t.Fatalf("no mail sent to %s", addr)
	return ""
}
