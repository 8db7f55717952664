package bots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCuratedBots(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		botName   string
		category  Category
	}{
		{
			name:      "googlebot",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			botName:   "Google",
			category:  CategorySearchEngine,
		},
		{
			name:      "bingbot",
			userAgent: "Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
			botName:   "Bing",
			category:  CategorySearchEngine,
		},
		{
			name:      "facebook preview",
			userAgent: "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
			botName:   "Facebook",
			category:  CategorySocialPreview,
		},
		{
			name:      "gptbot",
			userAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; GPTBot/1.0; +https://openai.com/gptbot)",
			botName:   "OpenAI GPT",
			category:  CategoryAICrawler,
		},
		{
			name:      "ahrefs",
			userAgent: "Mozilla/5.0 (compatible; AhrefsBot/7.0; +http://ahrefs.com/robot/)",
			botName:   "Ahrefs",
			category:  CategorySEOTool,
		},
		{
			name:      "uptimerobot",
			userAgent: "Mozilla/5.0+(compatible; UptimeRobot/2.0; http://www.uptimerobot.com/)",
			botName:   "UptimeRobot",
			category:  CategoryMonitoring,
		},
		{
			name:      "curl",
			userAgent: "curl/8.4.0",
			botName:   "cURL",
			category:  CategoryHTTPLibrary,
		},
		{
			name:      "headless chrome",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/120.0.0.0 Safari/537.36",
			botName:   "Headless Chrome",
			category:  CategoryHeadlessBrowser,
		},
		{
			name:      "feedly",
			userAgent: "Feedly/1.0 (+http://www.feedly.com/fetcher.html; 12 subscribers)",
			botName:   "Feedly",
			category:  CategoryFeedReader,
		},
		{
			name:      "sqlmap",
			userAgent: "sqlmap/1.7 (https://sqlmap.org)",
			botName:   "SQLMap",
			category:  CategorySecurityScanner,
		},
		{
			name:      "wayback machine",
			userAgent: "Mozilla/5.0 (compatible; archive.org_bot +http://archive.org/details/archive.org_bot)",
			botName:   "Internet Archive",
			category:  CategoryArchiver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Detect(tt.userAgent)
			assert.True(t, info.IsBot)
			assert.Equal(t, tt.botName, info.Name)
			assert.Equal(t, tt.category, info.Category)
			assert.Equal(t, 1.0, info.Confidence)
		})
	}
}

func TestDetectEmptyUserAgent(t *testing.T) {
	for _, ua := range []string{"", "   ", "\t"} {
		info := Detect(ua)
		assert.True(t, info.IsBot)
		assert.Equal(t, "Empty User-Agent", info.Name)
		assert.Equal(t, CategoryUnknown, info.Category)
		assert.Equal(t, 0.8, info.Confidence)
	}
}

func TestDetectGenericFallback(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
	}{
		{"generic bot word", "some-new-bot/1.0"},
		{"crawler word", "experimental crawler/0.1"},
		{"embedded url", "MyAgent/2.0 (+https://example.com/agent)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Detect(tt.userAgent)
			assert.True(t, info.IsBot)
			assert.Equal(t, "Unknown Bot", info.Name)
			assert.Equal(t, CategoryUnknown, info.Category)
			assert.Equal(t, 0.7, info.Confidence)
		})
	}
}

// The fallback requires a word boundary: "bot" buried inside a camel-case
// token is not a signal.
func TestDetectGenericFallbackNeedsWordBoundary(t *testing.T) {
	for _, ua := range []string{"SomeNewBot/1.0", "WebCrawler-Experimental/0.1", "Abbott/3.2"} {
		info := Detect(ua)
		assert.False(t, info.IsBot, "ua=%s", ua)
	}
}

func TestDetectRealBrowsers(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
	}{
		{"chrome on windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
		{"safari on iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"},
		{"firefox on linux", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Detect(tt.userAgent)
			assert.False(t, info.IsBot)
		})
	}
}

func TestDetectCategoryOrder(t *testing.T) {
	// A UA matching both a search engine and an archiver pattern resolves to
	// the earlier category.
	info := Detect("ia_archiver crawling via googlebot infrastructure")
	assert.Equal(t, CategorySearchEngine, info.Category)
	assert.Equal(t, "Google", info.Name)
}
