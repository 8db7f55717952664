package geo

import (
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/pariz/gountries"

	"github.com/blakecrosley/941analytics/internal/config"
)

var (
	geoDB     *geoip2.Reader
	once      sync.Once
	mu        sync.RWMutex
	logger    *slog.Logger
	countries *gountries.Query
)

// InitLogger sets the logger for the geo package.
func InitLogger(l *slog.Logger) {
	logger = l
}

// Country is a resolved visitor location.
type Country struct {
	Name string
	Code string // ISO 3166-1 alpha-2
}

// initGeoDB opens the GeoLite2 database. Returns nil when the database is not
// configured or not present: GeoIP enrichment is optional.
func initGeoDB() *geoip2.Reader {
	cfg := config.GetConfig()
	if cfg.GeoDBPath == "" {
		if logger != nil {
			logger.Debug("GeoIP database path not configured - geo enrichment disabled")
		}
		return nil
	}

	if _, err := os.Stat(cfg.GeoDBPath); os.IsNotExist(err) {
		if logger != nil {
			logger.Info("GeoLite2 database not found - geo enrichment disabled",
				slog.String("path", cfg.GeoDBPath),
				slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		}
		return nil
	} else if err != nil {
		if logger != nil {
			logger.Warn("Error checking GeoLite2 database file",
				slog.String("path", cfg.GeoDBPath),
				slog.Any("error", err))
		}
		return nil
	}

	db, err := geoip2.Open(cfg.GeoDBPath)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open GeoLite2 database",
				slog.String("path", cfg.GeoDBPath),
				slog.Any("error", err))
		}
		return nil
	}

	if logger != nil {
		logger.Info("GeoLite2 database initialized",
			slog.String("path", cfg.GeoDBPath))
	}
	return db
}

func getGeoDB() *geoip2.Reader {
	once.Do(func() {
		mu.Lock()
		geoDB = initGeoDB()
		countries = gountries.New()
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return geoDB
}

// Resolve looks up the country of an IP address. Returns an empty Country
// when the database is unavailable or the IP is unknown; it never fails.
func Resolve(ipAddress string) Country {
	db := getGeoDB()
	if db == nil {
		return Country{}
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return Country{}
	}

	record, err := db.Country(ip)
	if err != nil || record.Country.IsoCode == "" {
		return Country{}
	}

	code := record.Country.IsoCode
	name := record.Country.Names["en"]

	mu.RLock()
	q := countries
	mu.RUnlock()
	if q != nil {
		if country, err := q.FindCountryByAlpha(code); err == nil {
			name = country.Name.Common
		}
	}

	return Country{Name: name, Code: code}
}

// Reload reopens the GeoLite2 database from disk, for use after a database
// refresh job downloads a newer file.
func Reload() {
	mu.Lock()
	defer mu.Unlock()

	if geoDB != nil {
		geoDB.Close()
	}
	geoDB = initGeoDB()

	if geoDB != nil && logger != nil {
		logger.Info("GeoLite2 database reloaded")
	}
}
