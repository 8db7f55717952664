package useragent

import (
	"sort"
	"strings"
	"sync"

	"go.elara.ws/pcre"
)

// DeviceType is the coarse device category behind a user agent.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceTV      DeviceType = "tv"
	DeviceBot     DeviceType = "bot"
	DeviceUnknown DeviceType = "unknown"
)

// Info is a parsed user agent. Version fields hold the major version and are
// empty when not parseable.
type Info struct {
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	DeviceType     DeviceType
}

// IsMobile reports whether the device is a phone or tablet.
func (i Info) IsMobile() bool {
	return i.DeviceType == DeviceMobile || i.DeviceType == DeviceTablet
}

type browserRule struct {
	pattern string
	name    string
}

type osRule struct {
	pattern string
	name    string
	// Exactly one of versionPattern (a regex with one capture group) or
	// versionLiteral may be set.
	versionPattern string
	versionLiteral string
}

// Order matters throughout: Chromium-based browsers advertise Chrome and
// Safari tokens too, so the specific ones must win first and Safari must be
// tested only after every Chromium rule has failed.
var browserRules = []browserRule{
	{`Edg(?:e|A|iOS)?/(\d+)`, "Edge"},
	{`OPR/(\d+)`, "Opera"},
	{`Opera.*Version/(\d+)`, "Opera"},
	{`Vivaldi/(\d+)`, "Vivaldi"},
	{`Brave/(\d+)`, "Brave"},
	{`Arc/(\d+)`, "Arc"},
	{`SamsungBrowser/(\d+)`, "Samsung Internet"},
	{`UCBrowser/(\d+)`, "UC Browser"},
	{`YaBrowser/(\d+)`, "Yandex"},
	{`DuckDuckGo/(\d+)`, "DuckDuckGo"},
	{`Firefox Focus/(\d+)`, "Firefox Focus"},
	{`Firefox/(\d+)`, "Firefox"},
	{`FxiOS/(\d+)`, "Firefox"},
	{`CriOS/(\d+)`, "Chrome"},
	{`Chrome/(\d+)`, "Chrome"},
	{`Chromium/(\d+)`, "Chromium"},
	{`Version/(\d+).*Safari`, "Safari"},
	{`Safari/(\d+)`, "Safari"},
	{`MSIE (\d+)`, "Internet Explorer"},
	{`Trident.*rv:(\d+)`, "Internet Explorer"},
	{`Instagram`, "Instagram WebView"},
	{`FBAN|FBAV`, "Facebook WebView"},
	{`Twitter`, "Twitter WebView"},
	{`Line/(\d+)`, "LINE"},
	{`Snapchat`, "Snapchat"},
	{`TikTok`, "TikTok"},
}

var osRules = []osRule{
	{pattern: `iPhone|iPod`, name: "iOS", versionPattern: `OS (\d+[_\.]\d+)`},
	{pattern: `iPad`, name: "iPadOS", versionPattern: `OS (\d+[_\.]\d+)`},
	{pattern: `Macintosh|Mac OS X`, name: "macOS", versionPattern: `Mac OS X (\d+[_\.]\d+)`},
	// Android before Linux: every Android UA also says Linux.
	{pattern: `Android`, name: "Android", versionPattern: `Android (\d+\.?\d*)`},
	{pattern: `Windows NT 10\.0`, name: "Windows", versionLiteral: "10/11"},
	{pattern: `Windows NT 6\.3`, name: "Windows", versionLiteral: "8.1"},
	{pattern: `Windows NT 6\.2`, name: "Windows", versionLiteral: "8"},
	{pattern: `Windows NT 6\.1`, name: "Windows", versionLiteral: "7"},
	{pattern: `Windows NT 6\.0`, name: "Windows", versionLiteral: "Vista"},
	{pattern: `Windows NT 5\.1`, name: "Windows", versionLiteral: "XP"},
	{pattern: `Windows`, name: "Windows"},
	{pattern: `CrOS`, name: "Chrome OS"},
	{pattern: `Ubuntu`, name: "Ubuntu"},
	{pattern: `Fedora`, name: "Fedora"},
	{pattern: `Debian`, name: "Debian"},
	{pattern: `Linux`, name: "Linux"},
	{pattern: `PlayStation`, name: "PlayStation"},
	{pattern: `Xbox`, name: "Xbox"},
	{pattern: `Nintendo`, name: "Nintendo"},
	{pattern: `FreeBSD`, name: "FreeBSD"},
}

// TV is tested first (some smart TVs say "Mobile"), then tablet (bare
// Android without "Mobile" is a tablet), then mobile.
var tvIndicators = []string{
	`SmartTV`, `Smart-TV`, `Web0S`, `webOS`, `NetCast`, `Tizen`, `Roku`, `BRAVIA`,
	`AppleTV`, `tvOS`, `FireTV`, `Chromecast`, `PlayStation`, `Xbox`,
}

var tabletIndicators = []string{
	`iPad`, `Android(?!.*Mobile)`, `Tablet`, `Kindle`, `Silk`, `PlayBook`,
}

var mobileIndicators = []string{
	`Mobile`, `iPhone`, `iPod`, `BlackBerry`, `IEMobile`, `Opera Mini`,
	`Opera Mobi`, `webOS`, `Windows Phone`,
}

// Compiled regex cache
type regexCache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

func newRegexCache() *regexCache {
	return &regexCache{
		compiled: make(map[string]*pcre.Regexp),
	}
}

func (rc *regexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mutex.RLock()
	if regex, exists := rc.compiled[pattern]; exists {
		rc.mutex.RUnlock()
		return regex, nil
	}
	rc.mutex.RUnlock()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	// Double-check pattern
	if regex, exists := rc.compiled[pattern]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = regex
	return regex, nil
}

var (
	cache     *regexCache
	cacheOnce sync.Once
)

func getCache() *regexCache {
	cacheOnce.Do(func() {
		cache = newRegexCache()
	})
	return cache
}

func detectBrowser(ua string) (string, string) {
	rc := getCache()
	for _, rule := range browserRules {
		regex, err := rc.get(rule.pattern)
		if err != nil {
			continue
		}
		// pcre returns an empty, non-nil slice on no match.
		if matches := regex.FindStringSubmatch(ua); len(matches) > 0 {
			version := ""
			if len(matches) > 1 {
				version = matches[1]
			}
			return rule.name, version
		}
	}
	return "Unknown", ""
}

func detectOS(ua string) (string, string) {
	rc := getCache()
	for _, rule := range osRules {
		regex, err := rc.get(rule.pattern)
		if err != nil {
			continue
		}
		if !regex.MatchString(ua) {
			continue
		}

		if rule.versionLiteral != "" {
			return rule.name, rule.versionLiteral
		}
		if rule.versionPattern != "" {
			if vregex, err := rc.get(rule.versionPattern); err == nil {
				if matches := vregex.FindStringSubmatch(ua); len(matches) > 1 {
					return rule.name, strings.ReplaceAll(matches[1], "_", ".")
				}
			}
		}
		return rule.name, ""
	}
	return "Unknown", ""
}

func detectDeviceType(ua string) DeviceType {
	rc := getCache()

	for _, pattern := range tvIndicators {
		if regex, err := rc.get(pattern); err == nil && regex.MatchString(ua) {
			return DeviceTV
		}
	}

	for _, pattern := range tabletIndicators {
		if regex, err := rc.get(pattern); err == nil && regex.MatchString(ua) {
			return DeviceTablet
		}
	}

	for _, pattern := range mobileIndicators {
		if regex, err := rc.get(pattern); err == nil && regex.MatchString(ua) {
			return DeviceMobile
		}
	}

	for _, token := range []string{"Chrome", "Firefox", "Safari", "Edge"} {
		if strings.Contains(ua, token) {
			return DeviceDesktop
		}
	}

	return DeviceUnknown
}

// Parse extracts browser, OS, and device information from a user agent
// string. Unknown or empty input degrades to "Unknown" fields rather than
// failing.
func Parse(userAgent string) Info {
	if strings.TrimSpace(userAgent) == "" {
		return Info{Browser: "Unknown", OS: "Unknown", DeviceType: DeviceUnknown}
	}

	browser, browserVersion := detectBrowser(userAgent)
	osName, osVersion := detectOS(userAgent)

	return Info{
		Browser:        browser,
		BrowserVersion: browserVersion,
		OS:             osName,
		OSVersion:      osVersion,
		DeviceType:     detectDeviceType(userAgent),
	}
}

// CountRow is one name/count pair in a usage breakdown.
type CountRow struct {
	Name  string
	Count int
}

// BrowserSummary counts parsed user agents by browser family.
func BrowserSummary(infos []Info) []CountRow {
	counts := make(map[string]int)
	for _, info := range infos {
		counts[info.Browser]++
	}
	return sortedRows(counts)
}

// OSSummary counts parsed user agents by operating system.
func OSSummary(infos []Info) []CountRow {
	counts := make(map[string]int)
	for _, info := range infos {
		counts[info.OS]++
	}
	return sortedRows(counts)
}

// DeviceSummary counts parsed user agents by device type.
func DeviceSummary(infos []Info) []CountRow {
	counts := make(map[string]int)
	for _, info := range infos {
		counts[string(info.DeviceType)]++
	}
	return sortedRows(counts)
}

func sortedRows(counts map[string]int) []CountRow {
	rows := make([]CountRow, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, CountRow{Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
