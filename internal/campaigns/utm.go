package campaigns

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxParamLength caps stored UTM values; anything longer is abuse, not
// marketing.
const MaxParamLength = 200

// UTMParams holds the campaign attribution parameters extracted from a URL.
// Absent parameters are empty strings.
type UTMParams struct {
	Source     string
	Medium     string
	Campaign   string
	Term       string
	Content    string
	CampaignID string
}

// HasUTM reports whether any campaign parameter was present.
func (p UTMParams) HasUTM() bool {
	return p.Source != "" || p.Medium != "" || p.Campaign != "" ||
		p.Term != "" || p.Content != "" || p.CampaignID != ""
}

// Accepted parameter names per logical field, in priority order. The
// non-utm_ aliases cover platforms like Product Hunt ("ref") and affiliate
// programs ("source", "via").
var (
	sourceKeys     = []string{"utm_source", "ref", "source", "via"}
	mediumKeys     = []string{"utm_medium", "medium"}
	campaignKeys   = []string{"utm_campaign", "campaign", "utm_name"}
	termKeys       = []string{"utm_term", "term", "keyword", "keywords"}
	contentKeys    = []string{"utm_content", "content"}
	campaignIDKeys = []string{"utm_id", "campaign_id"}
)

var knownMediums = map[string]string{
	"cpc":          "paid",
	"ppc":          "paid",
	"paid":         "paid",
	"paidsearch":   "paid",
	"paid_search":  "paid",
	"paid-search":  "paid",
	"cpm":          "paid",
	"display":      "paid",
	"banner":       "paid",
	"retargeting":  "paid",
	"remarketing":  "paid",
	"organic":      "organic",
	"search":       "organic",
	"social":       "social",
	"social-media": "social",
	"social_media": "social",
	"socialmedia":  "social",
	"sm":           "social",
	"email":        "email",
	"e-mail":       "email",
	"newsletter":   "email",
	"mail":         "email",
	"referral":     "referral",
	"affiliate":    "referral",
	"partner":      "referral",
	"partnership":  "referral",
	"content":      "content",
	"blog":         "content",
	"post":         "content",
	"article":      "content",
	"video":        "video",
	"podcast":      "audio",
	"audio":        "audio",
	"qr":           "offline",
	"qrcode":       "offline",
	"print":        "offline",
	"tv":           "offline",
	"radio":        "offline",
	"direct":       "direct",
	"none":         "direct",
}

// cleanParam trims and truncates a parameter value. Truncation counts
// characters, not bytes, so a multi-byte sequence is never split.
func cleanParam(value string) string {
	cleaned := strings.TrimSpace(value)
	if utf8.RuneCountInString(cleaned) > MaxParamLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:MaxParamLength])
	}
	return cleaned
}

func firstParam(params url.Values, keys []string) string {
	for _, key := range keys {
		if values, ok := params[key]; ok && len(values) > 0 && values[0] != "" {
			if cleaned := cleanParam(values[0]); cleaned != "" {
				return cleaned
			}
		}
	}
	return ""
}

// ExtractUTM pulls campaign parameters out of a request URL. The query string
// wins; the fragment is consulted only for keys the query does not carry,
// since some single-page apps put parameters after the "#". Unparseable URLs
// yield an empty result.
func ExtractUTM(rawURL string) UTMParams {
	if rawURL == "" {
		return UTMParams{}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return UTMParams{}
	}

	params, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		params = url.Values{}
	}

	if parsed.Fragment != "" {
		if fragmentParams, err := url.ParseQuery(parsed.Fragment); err == nil {
			for key, values := range fragmentParams {
				if _, exists := params[key]; !exists {
					params[key] = values
				}
			}
		}
	}

	return UTMParams{
		Source:     firstParam(params, sourceKeys),
		Medium:     firstParam(params, mediumKeys),
		Campaign:   firstParam(params, campaignKeys),
		Term:       firstParam(params, termKeys),
		Content:    firstParam(params, contentKeys),
		CampaignID: firstParam(params, campaignIDKeys),
	}
}

// NormalizeMedium folds a utm_medium value into a coarse category (paid,
// organic, social, email, referral, content, video, audio, offline, direct).
// Unrecognized values come back lowercased but otherwise untouched.
func NormalizeMedium(medium string) string {
	if medium == "" {
		return ""
	}
	normalized := strings.TrimSpace(strings.ToLower(medium))
	if category, ok := knownMediums[normalized]; ok {
		return category
	}
	return normalized
}

// BuildCampaignURL appends UTM parameters to a base URL, preserving any
// existing query parameters. Useful for generating tracking links; a URL
// built here round-trips through ExtractUTM unchanged.
func BuildCampaignURL(baseURL, source, medium, campaign, term, content string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	params := parsed.Query()
	params.Set("utm_source", source)
	params.Set("utm_medium", medium)
	params.Set("utm_campaign", campaign)
	if term != "" {
		params.Set("utm_term", term)
	}
	if content != "" {
		params.Set("utm_content", content)
	}

	parsed.RawQuery = params.Encode()
	return parsed.String(), nil
}

// CampaignSummary is an aggregate breakdown over many extracted UTM sets.
type CampaignSummary struct {
	Sources         []CountRow
	Mediums         []CountRow
	Campaigns       []CountRow
	TotalWithUTM    int
	TotalWithoutUTM int
}

// CountRow is one value/count pair, sorted by count descending.
type CountRow struct {
	Value string
	Count int
}

// Summarize aggregates source, medium, and campaign counts over a batch of
// extractions.
func Summarize(all []UTMParams) CampaignSummary {
	sources := make(map[string]int)
	mediums := make(map[string]int)
	campaigns := make(map[string]int)

	summary := CampaignSummary{}
	for _, p := range all {
		if !p.HasUTM() {
			summary.TotalWithoutUTM++
			continue
		}
		summary.TotalWithUTM++
		if p.Source != "" {
			sources[p.Source]++
		}
		if p.Medium != "" {
			mediums[p.Medium]++
		}
		if p.Campaign != "" {
			campaigns[p.Campaign]++
		}
	}

	summary.Sources = sortedRows(sources)
	summary.Mediums = sortedRows(mediums)
	summary.Campaigns = sortedRows(campaigns)
	return summary
}

func sortedRows(counts map[string]int) []CountRow {
	rows := make([]CountRow, 0, len(counts))
	for value, count := range counts {
		rows = append(rows, CountRow{Value: value, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Value < rows[j].Value
	})
	return rows
}
