package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blakecrosley/941analytics/internal/funnels"
	"github.com/blakecrosley/941analytics/internal/goals"
	"github.com/blakecrosley/941analytics/internal/sites"
	"github.com/blakecrosley/941analytics/internal/visits"
)

// testDBCache caches test databases by root test name so setup helpers called
// from subtests share one database.
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

func allModels() []any {
	return []any{
		&sites.Site{},
		&visits.Visit{},
		&funnels.Funnel{},
		&goals.Goal{},
	}
}

// SetupTestDB creates a migrated test database. It uses a named in-memory
// database with cache=shared so multiple connections within a test see the
// same data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CleanAllTables clears all non-system tables in the database.
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	if len(tableNames) == 0 {
		return
	}

	db.Exec("PRAGMA foreign_keys = OFF")
	defer db.Exec("PRAGMA foreign_keys = ON")

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tableNames {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// GetLogger returns a quiet test logger.
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestSite registers a site, reusing an existing row for the domain.
func CreateTestSite(db *gorm.DB, domain string) sites.Site {
	var site sites.Site
	if db.Where("domain = ?", domain).First(&site).Error != nil {
		site = sites.Site{Domain: domain, CreatedAt: time.Now().UTC()}
		db.Create(&site)
	}
	return site
}

// CreateTestVisit inserts a minimal non-bot page view for a visitor.
func CreateTestVisit(t *testing.T, db *gorm.DB, siteID uint, signature, rawURL string, timestamp time.Time) visits.Visit {
	t.Helper()

	visit := visits.Visit{
		SiteID:           siteID,
		VisitorSignature: signature,
		VisitType:        visits.VisitTypePageView,
		RawURL:           rawURL,
		Hostname:         "example.com",
		Pathname:         pathOf(rawURL),
		ReferrerType:     "direct",
		Browser:          "Chrome",
		OS:               "macOS",
		DeviceType:       "desktop",
		Timestamp:        timestamp,
		CreatedAt:        time.Now().UTC(),
	}
	if err := db.Create(&visit).Error; err != nil {
		t.Fatalf("testsupport: failed to create visit: %v", err)
	}
	return visit
}

// CreateTestEvent inserts a custom event visit for a visitor.
func CreateTestEvent(t *testing.T, db *gorm.DB, siteID uint, signature, eventName string, timestamp time.Time) visits.Visit {
	t.Helper()

	visit := visits.Visit{
		SiteID:           siteID,
		VisitorSignature: signature,
		VisitType:        visits.VisitTypeCustomEvent,
		EventName:        eventName,
		RawURL:           "https://example.com/",
		Hostname:         "example.com",
		Pathname:         "/",
		ReferrerType:     "direct",
		DeviceType:       "desktop",
		Timestamp:        timestamp,
		CreatedAt:        time.Now().UTC(),
	}
	if err := db.Create(&visit).Error; err != nil {
		t.Fatalf("testsupport: failed to create event: %v", err)
	}
	return visit
}

func pathOf(rawURL string) string {
	if idx := strings.Index(rawURL, "://"); idx >= 0 {
		rest := rawURL[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return rest[slash:]
		}
	}
	return "/"
}
