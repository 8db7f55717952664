package bots

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

// Category identifies the kind of automated agent that produced a request.
type Category string

const (
	CategorySearchEngine    Category = "search_engine"
	CategorySocialPreview   Category = "social_preview"
	CategoryAICrawler       Category = "ai_crawler"
	CategorySEOTool         Category = "seo_tool"
	CategoryMonitoring      Category = "monitoring"
	CategoryHTTPLibrary     Category = "http_library"
	CategoryHeadlessBrowser Category = "headless_browser"
	CategoryFeedReader      Category = "feed_reader"
	CategorySecurityScanner Category = "security_scanner"
	CategoryArchiver        Category = "archiver"
	CategoryUnknown         Category = "unknown"
)

// BotInfo is the result of classifying a user agent string.
type BotInfo struct {
	IsBot      bool
	Name       string
	Category   Category
	Confidence float64
}

//go:embed database/bots.yml
var databaseFiles embed.FS

type patternEntry struct {
	Pattern string `yaml:"pattern"`
	Name    string `yaml:"name"`
}

type categoryEntry struct {
	Category Category       `yaml:"category"`
	Patterns []patternEntry `yaml:"patterns"`
}

// Lexical signals that show up in self-identifying bots but never in real
// browser user agents. Real browsers also never embed a URL in their own UA.
const genericBotPattern = `(?i)\bbot\b|\bcrawl|\bspider\b|\bscrape|\bfetch|\bindex|\barchive|\bmonitor|\bcheck|\bscan|\bvalidat|\bpreview|\bslurp|\brobots|http://|https://`

var (
	detector *botDetector
	once     sync.Once
)

type botDetector struct {
	categories   []categoryEntry
	genericRegex *pcre.Regexp
}

func getDetector() *botDetector {
	once.Do(func() {
		detector = &botDetector{
			genericRegex: pcre.MustCompile(genericBotPattern),
		}

		if data, err := databaseFiles.ReadFile("database/bots.yml"); err == nil {
			if err := yaml.Unmarshal(data, &detector.categories); err != nil {
				fmt.Printf("Error parsing bots.yml: %v\n", err)
			}
		}
	})
	return detector
}

// Detect classifies a raw user agent string. Curated matches come back with
// confidence 1.0, an empty UA with 0.8, and the generic lexical fallback with
// 0.7. Category order and pattern order inside each category are fixed; the
// first match wins. Detect never fails: a UA with no signal is simply not a
// bot.
func Detect(userAgent string) BotInfo {
	if strings.TrimSpace(userAgent) == "" {
		return BotInfo{
			IsBot:      true,
			Name:       "Empty User-Agent",
			Category:   CategoryUnknown,
			Confidence: 0.8,
		}
	}

	d := getDetector()
	ua := strings.ToLower(userAgent)

	for _, entry := range d.categories {
		for _, p := range entry.Patterns {
			if strings.Contains(ua, p.Pattern) {
				return BotInfo{
					IsBot:      true,
					Name:       p.Name,
					Category:   entry.Category,
					Confidence: 1.0,
				}
			}
		}
	}

	if d.genericRegex.MatchString(userAgent) {
		return BotInfo{
			IsBot:      true,
			Name:       "Unknown Bot",
			Category:   CategoryUnknown,
			Confidence: 0.7,
		}
	}

	return BotInfo{}
}
