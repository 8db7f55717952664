package campaigns

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUTMStandardParams(t *testing.T) {
	params := ExtractUTM("https://example.com/?utm_source=newsletter&utm_medium=email&utm_campaign=launch")

	assert.Equal(t, "newsletter", params.Source)
	assert.Equal(t, "email", params.Medium)
	assert.Equal(t, "launch", params.Campaign)
	assert.Empty(t, params.Term)
	assert.True(t, params.HasUTM())
}

func TestExtractUTMAliases(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want UTMParams
	}{
		{
			name: "ref alias for source",
			url:  "https://example.com/?ref=producthunt",
			want: UTMParams{Source: "producthunt"},
		},
		{
			name: "via alias loses to utm_source",
			url:  "https://example.com/?via=partner&utm_source=google",
			want: UTMParams{Source: "google"},
		},
		{
			name: "keyword alias for term",
			url:  "https://example.com/?keyword=go+analytics",
			want: UTMParams{Term: "go analytics"},
		},
		{
			name: "campaign_id alias",
			url:  "https://example.com/?campaign_id=c-123",
			want: UTMParams{CampaignID: "c-123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractUTM(tt.url))
		})
	}
}

func TestExtractUTMFragmentFallback(t *testing.T) {
	// SPA-style URL with parameters after the hash.
	params := ExtractUTM("https://example.com/app#utm_source=twitter&utm_medium=social")
	assert.Equal(t, "twitter", params.Source)
	assert.Equal(t, "social", params.Medium)

	// Query wins over fragment for the same key.
	params = ExtractUTM("https://example.com/?utm_source=query#utm_source=fragment")
	assert.Equal(t, "query", params.Source)
}

func TestExtractUTMTruncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	params := ExtractUTM("https://example.com/?utm_source=" + long)
	assert.Len(t, params.Source, MaxParamLength)
}

func TestExtractUTMTruncationCountsRunes(t *testing.T) {
	// 500 three-byte characters: a byte-wise cut at 200 would land inside a
	// sequence and produce invalid UTF-8.
	long := strings.Repeat("日", 500)
	params := ExtractUTM("https://example.com/?utm_source=" + url.QueryEscape(long))

	runes := []rune(params.Source)
	assert.Len(t, runes, MaxParamLength)
	assert.True(t, utf8.ValidString(params.Source))
	assert.Equal(t, strings.Repeat("日", MaxParamLength), params.Source)
}

func TestExtractUTMEmptyAndBlank(t *testing.T) {
	assert.False(t, ExtractUTM("").HasUTM())
	assert.False(t, ExtractUTM("https://example.com/page").HasUTM())
	// Blank values never become empty-string fields.
	assert.False(t, ExtractUTM("https://example.com/?utm_source=&utm_medium=%20").HasUTM())
}

func TestNormalizeMedium(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cpc", "paid"},
		{"PPC", "paid"},
		{"newsletter", "email"},
		{"Social-Media", "social"},
		{"podcast", "audio"},
		{"qr", "offline"},
		{"custom-thing", "custom-thing"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeMedium(tt.in), "medium %q", tt.in)
	}
}

func TestBuildCampaignURLRoundTrip(t *testing.T) {
	built, err := BuildCampaignURL("https://example.com/landing?v=2", "newsletter", "email", "spring_sale", "", "")
	require.NoError(t, err)

	params := ExtractUTM(built)
	assert.Equal(t, "newsletter", params.Source)
	assert.Equal(t, "email", params.Medium)
	assert.Equal(t, "spring_sale", params.Campaign)

	// Existing query parameters survive.
	assert.Contains(t, built, "v=2")
}

func TestSummarize(t *testing.T) {
	all := []UTMParams{
		{Source: "google", Medium: "cpc", Campaign: "launch"},
		{Source: "google", Medium: "cpc"},
		{Source: "newsletter", Medium: "email"},
		{},
	}

	summary := Summarize(all)
	assert.Equal(t, 3, summary.TotalWithUTM)
	assert.Equal(t, 1, summary.TotalWithoutUTM)
	require.NotEmpty(t, summary.Sources)
	assert.Equal(t, CountRow{Value: "google", Count: 2}, summary.Sources[0])
}
