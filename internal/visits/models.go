package visits

import "time"

// VisitType distinguishes page views from custom events.
type VisitType int

const (
	VisitTypePageView    VisitType = 1
	VisitTypeCustomEvent VisitType = 2
)

// Visit is one classified page view or event. The raw request inputs are kept
// alongside the derived classification columns; derived fields are computed
// once at ingestion and never updated.
type Visit struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID           uint      `gorm:"index;not null" json:"site_id"`
	VisitorSignature string    `gorm:"index" json:"visitor_signature"`
	VisitType        VisitType `gorm:"index" json:"visit_type"`
	EventName        string    `gorm:"index" json:"event_name"`

	// Raw inputs
	RawURL      string `json:"raw_url"`
	Hostname    string `json:"hostname"`
	Pathname    string `json:"pathname"`
	ReferrerURL string `json:"referrer_url"`
	UserAgent   string `json:"user_agent"`

	// Bot classification
	IsBot         bool    `gorm:"index" json:"is_bot"`
	BotName       string  `json:"bot_name"`
	BotCategory   string  `json:"bot_category"`
	BotConfidence float64 `json:"bot_confidence"`

	// Referrer attribution
	ReferrerType   string `gorm:"index" json:"referrer_type"`
	ReferrerDomain string `json:"referrer_domain"`
	SourceName     string `json:"source_name"`
	IsSearch       bool   `json:"is_search"`

	// Campaign parameters
	UTMSource     string `json:"utm_source"`
	UTMMedium     string `json:"utm_medium"`
	UTMCampaign   string `json:"utm_campaign"`
	UTMTerm       string `json:"utm_term"`
	UTMContent    string `json:"utm_content"`
	UTMCampaignID string `json:"utm_campaign_id"`

	// Browser, OS, device
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	OSVersion      string `json:"os_version"`
	DeviceType     string `json:"device_type"`

	// Geo enrichment (optional, empty when no GeoIP database is configured)
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`

	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// HasUTM reports whether the visit carried any campaign parameter.
func (v *Visit) HasUTM() bool {
	return v.UTMSource != "" || v.UTMMedium != "" || v.UTMCampaign != "" ||
		v.UTMTerm != "" || v.UTMContent != "" || v.UTMCampaignID != ""
}
