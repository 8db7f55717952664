package visits

import (
	"net/url"
	"time"

	"github.com/blakecrosley/941analytics/internal/bots"
	"github.com/blakecrosley/941analytics/internal/campaigns"
	"github.com/blakecrosley/941analytics/internal/referrers"
	"github.com/blakecrosley/941analytics/internal/useragent"
)

// FactInput is the raw per-request material the classifiers consume: exactly
// the subset of an HTTP request a server-side collector sees. No cookies, no
// fingerprinting.
type FactInput struct {
	RawURL      string
	ReferrerURL string
	UserAgent   string
	Timestamp   time.Time
	SiteDomain  string
	VisitType   VisitType
	EventName   string
}

// BuildFact runs all four classifiers over one request and assembles the
// derived visit record. It is a pure function of its input: no I/O, no hidden
// state, identical inputs always produce identical facts.
func BuildFact(input FactInput) Visit {
	botInfo := bots.Detect(input.UserAgent)
	refInfo := referrers.Classify(input.ReferrerURL, input.SiteDomain)
	utm := campaigns.ExtractUTM(input.RawURL)
	uaInfo := useragent.Parse(input.UserAgent)

	hostname, pathname := splitURL(input.RawURL)

	deviceType := uaInfo.DeviceType
	if botInfo.IsBot {
		deviceType = useragent.DeviceBot
	}

	return Visit{
		VisitType: input.VisitType,
		EventName: input.EventName,

		RawURL:      input.RawURL,
		Hostname:    hostname,
		Pathname:    pathname,
		ReferrerURL: input.ReferrerURL,
		UserAgent:   input.UserAgent,

		IsBot:         botInfo.IsBot,
		BotName:       botInfo.Name,
		BotCategory:   string(botInfo.Category),
		BotConfidence: botInfo.Confidence,

		ReferrerType:   string(refInfo.Type),
		ReferrerDomain: refInfo.Domain,
		SourceName:     refInfo.SourceName,
		IsSearch:       refInfo.IsSearch,

		UTMSource:     utm.Source,
		UTMMedium:     utm.Medium,
		UTMCampaign:   utm.Campaign,
		UTMTerm:       utm.Term,
		UTMContent:    utm.Content,
		UTMCampaignID: utm.CampaignID,

		Browser:        uaInfo.Browser,
		BrowserVersion: uaInfo.BrowserVersion,
		OS:             uaInfo.OS,
		OSVersion:      uaInfo.OSVersion,
		DeviceType:     string(deviceType),

		Timestamp: input.Timestamp.UTC(),
	}
}

func splitURL(rawURL string) (hostname, pathname string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	pathname = parsed.Path
	if pathname == "" {
		pathname = "/"
	}
	return parsed.Hostname(), pathname
}
