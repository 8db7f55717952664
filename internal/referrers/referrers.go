package referrers

import (
	"net/url"
	"sort"
	"strings"
)

// Type classifies where a visit came from.
type Type string

const (
	TypeDirect   Type = "direct"   // no referrer: bookmarks, typed URLs, dark social
	TypeOrganic  Type = "organic"  // search engine results
	TypeSocial   Type = "social"   // social media platforms
	TypeEmail    Type = "email"    // email clients and newsletters
	TypeReferral Type = "referral" // other websites
	TypePaid     Type = "paid"     // known advertising domains
	TypeInternal Type = "internal" // same-site navigation
)

// Info is a classified referrer.
type Info struct {
	Type       Type
	Domain     string
	SourceName string
	IsSearch   bool
}

type domainEntry struct {
	pattern string
	name    string
}

// Tables are ordered slices rather than maps: matching precedence is
// first-entry-wins and must not depend on map iteration order.

var searchEngines = []domainEntry{
	{"google.", "Google"},
	{"googlesyndication.com", "Google Ads"},
	{"bing.com", "Bing"},
	{"msn.com", "MSN/Bing"},
	{"yahoo.", "Yahoo"},
	{"duckduckgo.com", "DuckDuckGo"},
	{"baidu.com", "Baidu"},
	{"yandex.", "Yandex"},
	{"ecosia.org", "Ecosia"},
	{"qwant.com", "Qwant"},
	{"startpage.com", "Startpage"},
	{"search.brave.com", "Brave Search"},
	{"neeva.com", "Neeva"},
	{"you.com", "You.com"},
	{"kagi.com", "Kagi"},
	{"ask.com", "Ask.com"},
	{"search.aol.com", "AOL"},
	{"naver.com", "Naver"},
	{"daum.net", "Daum"},
	{"seznam.cz", "Seznam"},
	{"sogou.com", "Sogou"},
	{"so.com", "Qihoo 360"},
	{"coccoc.com", "Coc Coc"},
	{"yep.com", "Yep"},
	{"perplexity.ai", "Perplexity"},
	{"phind.com", "Phind"},
}

var socialPlatforms = []domainEntry{
	{"facebook.com", "Facebook"},
	{"fb.com", "Facebook"},
	{"fb.me", "Facebook"},
	{"instagram.com", "Instagram"},
	{"threads.net", "Threads"},
	{"messenger.com", "Messenger"},
	{"twitter.com", "Twitter/X"},
	{"x.com", "Twitter/X"},
	{"t.co", "Twitter/X"},
	{"linkedin.com", "LinkedIn"},
	{"lnkd.in", "LinkedIn"},
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
	{"tiktok.com", "TikTok"},
	{"reddit.com", "Reddit"},
	{"pinterest.com", "Pinterest"},
	{"pin.it", "Pinterest"},
	{"snapchat.com", "Snapchat"},
	{"discord.com", "Discord"},
	{"discord.gg", "Discord"},
	{"discordapp.com", "Discord"},
	{"telegram.org", "Telegram"},
	{"t.me", "Telegram"},
	{"whatsapp.com", "WhatsApp"},
	{"wa.me", "WhatsApp"},
	{"mastodon.social", "Mastodon"},
	{"tumblr.com", "Tumblr"},
	{"medium.com", "Medium"},
	{"quora.com", "Quora"},
	{"twitch.tv", "Twitch"},
	{"vimeo.com", "Vimeo"},
	{"flickr.com", "Flickr"},
	{"weibo.com", "Weibo"},
	{"wechat.com", "WeChat"},
	{"line.me", "LINE"},
	{"vk.com", "VK"},
	{"ok.ru", "Odnoklassniki"},
	{"news.ycombinator.com", "Hacker News"},
	{"lobste.rs", "Lobsters"},
	{"producthunt.com", "Product Hunt"},
	{"bsky.app", "Bluesky"},
}

var emailProviders = []domainEntry{
	{"mail.google.com", "Gmail"},
	{"mail.yahoo.com", "Yahoo Mail"},
	{"outlook.live.com", "Outlook"},
	{"outlook.office.com", "Outlook"},
	{"mail.aol.com", "AOL Mail"},
	{"mail.protonmail.com", "ProtonMail"},
	{"protonmail.com", "ProtonMail"},
	{"mail.proton.me", "ProtonMail"},
	{"mail.zoho.com", "Zoho Mail"},
	{"fastmail.com", "Fastmail"},
	{"hey.com", "HEY"},
	{"tutanota.com", "Tutanota"},
	{"mailchimp.com", "Mailchimp"},
	{"campaign-archive.com", "Mailchimp"},
	{"list-manage.com", "Mailchimp"},
	{"sendgrid.net", "SendGrid"},
	{"constantcontact.com", "Constant Contact"},
	{"hubspot.com", "HubSpot"},
	{"mailgun.com", "Mailgun"},
	{"klaviyo.com", "Klaviyo"},
	{"convertkit.com", "ConvertKit"},
	{"sendinblue.com", "Brevo"},
	{"brevo.com", "Brevo"},
	{"getresponse.com", "GetResponse"},
	{"aweber.com", "AWeber"},
	{"drip.com", "Drip"},
	{"activecampaign.com", "ActiveCampaign"},
	{"intercom.io", "Intercom"},
	{"customer.io", "Customer.io"},
	{"postmarkapp.com", "Postmark"},
	{"sparkpost.com", "SparkPost"},
	{"mailjet.com", "Mailjet"},
}

var paidAdDomains = []domainEntry{
	{"googleads.g.doubleclick.net", "Google Ads"},
	{"googleadservices.com", "Google Ads"},
	{"doubleclick.net", "Google Ads"},
	{"adservice.google", "Google Ads"},
	{"facebook.com/ads", "Facebook Ads"},
	{"business.facebook.com", "Facebook Ads"},
	{"ads.linkedin.com", "LinkedIn Ads"},
	{"bing.com/ads", "Bing Ads"},
	{"ads.microsoft.com", "Microsoft Ads"},
	{"outbrain.com", "Outbrain"},
	{"taboola.com", "Taboola"},
	{"criteo.com", "Criteo"},
}

// Lexical hints for webmail and newsletter hosts that no curated entry covers.
var emailIndicators = []string{
	"mail.",
	"webmail.",
	"/mail/",
	"email.",
	"newsletter",
	"campaign",
}

func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	return strings.TrimPrefix(domain, "www.")
}

// extractDomain pulls the normalized host out of a referrer URL. A scheme is
// assumed when missing. Returns "" when there is nothing usable.
func extractDomain(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return ""
	}

	if !strings.HasPrefix(referrer, "http://") && !strings.HasPrefix(referrer, "https://") {
		referrer = "https://" + referrer
	}

	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Host == "" {
		return ""
	}

	return normalizeDomain(parsed.Host)
}

// Classify maps a raw Referer header to a traffic source. currentDomain, when
// non-empty, marks same-site navigation as internal. Malformed input degrades
// to direct; Classify never fails.
//
// Email providers are tested before search engines on purpose: a click out of
// mail.google.com is newsletter traffic, not a Google search.
func Classify(referrer, currentDomain string) Info {
	domain := extractDomain(referrer)
	if domain == "" {
		return Info{Type: TypeDirect}
	}

	referrerLower := strings.ToLower(referrer)

	if currentDomain != "" {
		current := normalizeDomain(currentDomain)
		if domain == current || strings.HasSuffix(domain, "."+current) {
			return Info{Type: TypeInternal, Domain: domain}
		}
	}

	for _, e := range paidAdDomains {
		if strings.Contains(domain, e.pattern) || strings.Contains(referrerLower, e.pattern) {
			return Info{Type: TypePaid, Domain: domain, SourceName: e.name}
		}
	}

	for _, e := range emailProviders {
		if strings.Contains(domain, e.pattern) || strings.Contains(referrerLower, e.pattern) {
			return Info{Type: TypeEmail, Domain: domain, SourceName: e.name}
		}
	}

	for _, indicator := range emailIndicators {
		if strings.Contains(domain, indicator) || strings.Contains(referrerLower, indicator) {
			return Info{Type: TypeEmail, Domain: domain, SourceName: "Email"}
		}
	}

	for _, e := range searchEngines {
		if strings.Contains(domain, e.pattern) {
			return Info{Type: TypeOrganic, Domain: domain, SourceName: e.name, IsSearch: true}
		}
	}

	for _, e := range socialPlatforms {
		if strings.Contains(domain, e.pattern) {
			return Info{Type: TypeSocial, Domain: domain, SourceName: e.name}
		}
	}

	return Info{Type: TypeReferral, Domain: domain}
}

// FriendlyName returns a display name for a referrer hostname: the curated
// name when one exists, otherwise the bare domain with "www." stripped and the
// first letter capitalized.
func FriendlyName(hostname string) string {
	domain := normalizeDomain(hostname)
	if domain == "" {
		return ""
	}

	for _, table := range [][]domainEntry{searchEngines, socialPlatforms, emailProviders, paidAdDomains} {
		for _, e := range table {
			if strings.Contains(domain, e.pattern) {
				return e.name
			}
		}
	}

	return strings.ToUpper(domain[:1]) + domain[1:]
}

// TrafficSourceSummary counts classified referrers by source type.
func TrafficSourceSummary(infos []Info) map[Type]int {
	counts := map[Type]int{
		TypeDirect:   0,
		TypeOrganic:  0,
		TypeSocial:   0,
		TypeEmail:    0,
		TypeReferral: 0,
		TypePaid:     0,
		TypeInternal: 0,
	}
	for _, info := range infos {
		counts[info.Type]++
	}
	return counts
}

// TopReferrer is one row of a TopReferrers breakdown.
type TopReferrer struct {
	Source string
	Count  int
}

// TopReferrers returns the most common sources, direct and internal traffic
// excluded. Ties break alphabetically so results are stable.
func TopReferrers(infos []Info, limit int) []TopReferrer {
	counts := make(map[string]int)
	for _, info := range infos {
		if info.Type == TypeDirect || info.Type == TypeInternal {
			continue
		}
		key := info.SourceName
		if key == "" {
			key = info.Domain
		}
		if key == "" {
			key = "Unknown"
		}
		counts[key]++
	}

	top := make([]TopReferrer, 0, len(counts))
	for source, count := range counts {
		top = append(top, TopReferrer{Source: source, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Source < top[j].Source
	})

	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top
}
