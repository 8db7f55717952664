package sites

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SiteNotFoundError is returned when a hostname does not belong to any
// registered site. Callers detect it with errors.As.
type SiteNotFoundError struct {
	Domain string
}

func (e *SiteNotFoundError) Error() string {
	return fmt.Sprintf("site not found for domain: %s", e.Domain)
}

func NewSiteNotFoundError(domain string) *SiteNotFoundError {
	return &SiteNotFoundError{Domain: domain}
}

// Site is a tracked website.
type Site struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Domain    string    `gorm:"unique;not null" json:"domain"` // base domain, e.g. "example.com"
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Create registers a new site under its base domain.
func Create(db *gorm.DB, domain, name string) (*Site, error) {
	site := &Site{Domain: BaseDomainForHost(domain), Name: name}
	if err := db.Create(site).Error; err != nil {
		return nil, fmt.Errorf("creating site: %w", err)
	}
	return site, nil
}

// GetByDomain retrieves a site by exact base-domain match.
func GetByDomain(db *gorm.DB, host string) (*Site, error) {
	var site Site
	if err := db.Where("domain = ?", BaseDomainForHost(host)).First(&site).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewSiteNotFoundError(host)
		}
		return nil, fmt.Errorf("unexpected error querying site: %w", err)
	}
	return &site, nil
}

// GetByID retrieves a site by primary key.
func GetByID(db *gorm.DB, id uint) (*Site, error) {
	var site Site
	if err := db.First(&site, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewSiteNotFoundError(fmt.Sprintf("id=%d", id))
		}
		return nil, fmt.Errorf("unexpected error querying site: %w", err)
	}
	return &site, nil
}

// List returns all registered sites, oldest first.
func List(db *gorm.DB) ([]Site, error) {
	var all []Site
	if err := db.Order("id asc").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	return all, nil
}

// BaseDomainForHost returns the canonical base domain for a hostname,
// preserving localhost semantics while collapsing subdomains
// (foo.example.com -> example.com).
func BaseDomainForHost(host string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(host)), ".")
	if len(parts) < 2 {
		return strings.ToLower(strings.TrimSpace(host))
	}

	lastPart := parts[len(parts)-1]
	if lastPart == "localhost" {
		return "localhost"
	}

	secondLast := parts[len(parts)-2]

	// Country TLDs with a two-part structure keep three labels.
	ccTLDs := map[string]bool{
		"co.uk":  true,
		"co.jp":  true,
		"co.za":  true,
		"co.nz":  true,
		"co.in":  true,
		"com.au": true,
		"com.br": true,
		"org.uk": true,
		"gov.uk": true,
		"edu.au": true,
		"ac.uk":  true,
		"ne.jp":  true,
		"or.jp":  true,
	}

	if len(parts) > 2 {
		twoPartTLD := secondLast + "." + lastPart
		if ccTLDs[twoPartTLD] {
			return parts[len(parts)-3] + "." + twoPartTLD
		}
	}

	return secondLast + "." + lastPart
}
