package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	chromeMacUA   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	edgeWinUA     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
	safariIOSUA   = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
	firefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	androidTablet = "Mozilla/5.0 (Linux; Android 13; SM-X710) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	androidPhone  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	tizenTVUA     = "Mozilla/5.0 (SMART-TV; Linux; Tizen 6.0) AppleWebKit/537.36 (KHTML, like Gecko) Version/6.0 TV Safari/537.36"
)

func TestParseBrowsers(t *testing.T) {
	tests := []struct {
		name        string
		userAgent   string
		wantBrowser string
		wantVersion string
	}{
		{"chrome on mac", chromeMacUA, "Chrome", "120"},
		{"edge wins over chrome token", edgeWinUA, "Edge", "120"},
		{"safari after chromium rules", safariIOSUA, "Safari", "17"},
		{"firefox", firefoxLinux, "Firefox", "121"},
		{
			"opera via OPR token",
			"Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 OPR/106.0.0.0",
			"Opera", "106",
		},
		{
			"samsung internet",
			"Mozilla/5.0 (Linux; Android 13; SM-S918B) AppleWebKit/537.36 (KHTML, like Gecko) SamsungBrowser/23.0 Chrome/115.0.0.0 Mobile Safari/537.36",
			"Samsung Internet", "23",
		},
		{
			"chrome on ios",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/120.0.6099.119 Mobile/15E148 Safari/604.1",
			"Chrome", "120",
		},
		{"unknown", "some-random-agent", "Unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.userAgent)
			assert.Equal(t, tt.wantBrowser, info.Browser)
			assert.Equal(t, tt.wantVersion, info.BrowserVersion)
		})
	}
}

// A rule that does not match must not win just because it evaluated first:
// pcre's FindStringSubmatch returns an empty non-nil slice on no match, so a
// nil check alone would hand every user agent to the Edge rule.
func TestParseNeverMatchesFirstRuleByDefault(t *testing.T) {
	for _, ua := range []string{
		"some-random-agent",
		"totally made up string",
		chromeMacUA,
		firefoxLinux,
	} {
		info := Parse(ua)
		if ua == chromeMacUA {
			assert.Equal(t, "Chrome", info.Browser, "ua=%s", ua)
		} else if ua == firefoxLinux {
			assert.Equal(t, "Firefox", info.Browser, "ua=%s", ua)
		} else {
			assert.Equal(t, "Unknown", info.Browser, "ua=%s", ua)
			assert.Empty(t, info.BrowserVersion)
		}
	}
}

func TestParseOS(t *testing.T) {
	tests := []struct {
		name        string
		userAgent   string
		wantOS      string
		wantVersion string
	}{
		{"macos with version", chromeMacUA, "macOS", "10.15"},
		{"windows 10 literal", edgeWinUA, "Windows", "10/11"},
		{"ios underscore version", safariIOSUA, "iOS", "17.1"},
		{"android before linux", androidPhone, "Android", "14"},
		{"linux", firefoxLinux, "Linux", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.userAgent)
			assert.Equal(t, tt.wantOS, info.OS)
			assert.Equal(t, tt.wantVersion, info.OSVersion)
		})
	}
}

func TestParseDeviceType(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      DeviceType
	}{
		{"desktop", chromeMacUA, DeviceDesktop},
		{"phone", androidPhone, DeviceMobile},
		{"android without mobile is tablet", androidTablet, DeviceTablet},
		{
			"ipad",
			"Mozilla/5.0 (iPad; CPU OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			DeviceTablet,
		},
		{"smart tv beats mobile token", tizenTVUA, DeviceTV},
		{"unknown agent", "some-random-agent", DeviceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.userAgent).DeviceType)
		})
	}
}

func TestParseEmptyUserAgent(t *testing.T) {
	info := Parse("")
	assert.Equal(t, "Unknown", info.Browser)
	assert.Equal(t, "Unknown", info.OS)
	assert.Equal(t, DeviceUnknown, info.DeviceType)
	assert.False(t, info.IsMobile())
}

func TestParseIsDeterministic(t *testing.T) {
	first := Parse(edgeWinUA)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Parse(edgeWinUA))
	}
}

func TestSummaries(t *testing.T) {
	infos := []Info{
		{Browser: "Chrome", OS: "Windows", DeviceType: DeviceDesktop},
		{Browser: "Chrome", OS: "macOS", DeviceType: DeviceDesktop},
		{Browser: "Safari", OS: "iOS", DeviceType: DeviceMobile},
	}

	browsers := BrowserSummary(infos)
	assert.Equal(t, CountRow{Name: "Chrome", Count: 2}, browsers[0])

	devices := DeviceSummary(infos)
	assert.Equal(t, CountRow{Name: "desktop", Count: 2}, devices[0])
}
