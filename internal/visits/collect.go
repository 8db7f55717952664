package visits

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/blakecrosley/941analytics/internal/config"
	"github.com/blakecrosley/941analytics/internal/geo"
	"github.com/blakecrosley/941analytics/internal/sites"
	"github.com/blakecrosley/941analytics/internal/visitors"
)

// CollectInput is one incoming tracking request.
type CollectInput struct {
	RawURL      string
	ReferrerURL string
	UserAgent   string
	IPAddress   string
	VisitType   VisitType
	EventName   string
	Timestamp   time.Time
}

// Collect classifies and persists one page view or event. The site is
// resolved from the visited URL's hostname; unknown hostnames return a
// sites.SiteNotFoundError. Classification itself cannot fail.
func Collect(db *gorm.DB, logger *slog.Logger, input *CollectInput) (*Visit, error) {
	if input.RawURL == "" {
		return nil, fmt.Errorf("missing url")
	}
	if input.VisitType == VisitTypeCustomEvent && strings.TrimSpace(input.EventName) == "" {
		return nil, fmt.Errorf("custom event requires an event name")
	}

	hostname, _ := splitURL(input.RawURL)
	site, err := sites.GetByDomain(db, hostname)
	if err != nil {
		return nil, err
	}

	// Client clocks drift; never record a visit from the future.
	timestamp := input.Timestamp
	if timestamp.IsZero() || timestamp.After(time.Now().UTC()) {
		timestamp = time.Now().UTC()
	}

	visit := BuildFact(FactInput{
		RawURL:      input.RawURL,
		ReferrerURL: input.ReferrerURL,
		UserAgent:   input.UserAgent,
		Timestamp:   timestamp,
		SiteDomain:  site.Domain,
		VisitType:   input.VisitType,
		EventName:   strings.TrimSpace(input.EventName),
	})

	cfg := config.GetConfig()
	visit.SiteID = site.ID
	visit.VisitorSignature = visitors.BuildSignature(site.Domain, input.IPAddress, input.UserAgent, cfg.PrivateKey)

	country := geo.Resolve(input.IPAddress)
	visit.Country = country.Name
	visit.CountryCode = country.Code

	if err := db.Create(&visit).Error; err != nil {
		return nil, fmt.Errorf("persisting visit: %w", err)
	}

	logger.Debug("Visit collected",
		slog.Uint64("site_id", uint64(site.ID)),
		slog.String("pathname", visit.Pathname),
		slog.Bool("is_bot", visit.IsBot),
		slog.String("referrer_type", visit.ReferrerType))

	return &visit, nil
}
