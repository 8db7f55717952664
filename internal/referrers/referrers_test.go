package referrers

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		referrer      string
		currentDomain string
		wantType      Type
		wantSource    string
		wantSearch    bool
	}{
		{
			name:     "empty referrer is direct",
			referrer: "",
			wantType: TypeDirect,
		},
		{
			name:     "whitespace referrer is direct",
			referrer: "   ",
			wantType: TypeDirect,
		},
		{
			name:     "unparseable referrer is direct",
			referrer: "http://",
			wantType: TypeDirect,
		},
		{
			name:       "google search",
			referrer:   "https://www.google.com/search?q=test",
			wantType:   TypeOrganic,
			wantSource: "Google",
			wantSearch: true,
		},
		{
			name:       "duckduckgo",
			referrer:   "https://duckduckgo.com/",
			wantType:   TypeOrganic,
			wantSource: "DuckDuckGo",
			wantSearch: true,
		},
		{
			name:       "gmail is email not organic",
			referrer:   "https://mail.google.com/mail/u/0/",
			wantType:   TypeEmail,
			wantSource: "Gmail",
		},
		{
			name:       "outlook webmail",
			referrer:   "https://outlook.live.com/mail/inbox",
			wantType:   TypeEmail,
			wantSource: "Outlook",
		},
		{
			name:       "generic webmail host",
			referrer:   "https://mail.example-isp.net/inbox",
			wantType:   TypeEmail,
			wantSource: "Email",
		},
		{
			name:       "twitter shortener",
			referrer:   "https://t.co/abc123",
			wantType:   TypeSocial,
			wantSource: "Twitter/X",
		},
		{
			name:       "facebook mobile subdomain",
			referrer:   "https://m.facebook.com/story.php",
			wantType:   TypeSocial,
			wantSource: "Facebook",
		},
		{
			name:       "doubleclick is paid",
			referrer:   "https://googleads.g.doubleclick.net/pagead/aclk",
			wantType:   TypePaid,
			wantSource: "Google Ads",
		},
		{
			name:     "unknown site is referral",
			referrer: "https://www.example.org/blog/post",
			wantType: TypeReferral,
		},
		{
			name:          "same domain is internal",
			referrer:      "https://myapp.com/pricing",
			currentDomain: "myapp.com",
			wantType:      TypeInternal,
		},
		{
			name:          "subdomain of site is internal",
			referrer:      "https://docs.myapp.com/guide",
			currentDomain: "www.myapp.com",
			wantType:      TypeInternal,
		},
		{
			name:       "scheme-less referrer",
			referrer:   "bing.com/search?q=analytics",
			wantType:   TypeOrganic,
			wantSource: "Bing",
			wantSearch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.referrer, tt.currentDomain)
			if got.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.Type, tt.wantType)
			}
			if got.SourceName != tt.wantSource {
				t.Errorf("sourceName = %q, want %q", got.SourceName, tt.wantSource)
			}
			if got.IsSearch != tt.wantSearch {
				t.Errorf("isSearch = %v, want %v", got.IsSearch, tt.wantSearch)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	ref := "https://news.ycombinator.com/item?id=1"
	first := Classify(ref, "")
	for i := 0; i < 10; i++ {
		if Classify(ref, "") != first {
			t.Fatal("classification is not stable across calls")
		}
	}
}

func TestFriendlyName(t *testing.T) {
	tests := []struct {
		hostname string
		want     string
	}{
		{"www.google.com", "Google"},
		{"news.ycombinator.com", "Hacker News"},
		{"www.smallblog.dev", "Smallblog.dev"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FriendlyName(tt.hostname); got != tt.want {
			t.Errorf("FriendlyName(%q) = %q, want %q", tt.hostname, got, tt.want)
		}
	}
}

func TestTrafficSourceSummary(t *testing.T) {
	infos := []Info{
		{Type: TypeDirect},
		{Type: TypeOrganic, SourceName: "Google"},
		{Type: TypeOrganic, SourceName: "Bing"},
		{Type: TypeSocial, SourceName: "Reddit"},
	}

	counts := TrafficSourceSummary(infos)
	if counts[TypeOrganic] != 2 || counts[TypeDirect] != 1 || counts[TypeSocial] != 1 {
		t.Errorf("unexpected summary: %v", counts)
	}
	if counts[TypePaid] != 0 {
		t.Errorf("paid should be zero, got %d", counts[TypePaid])
	}
}

func TestTopReferrers(t *testing.T) {
	infos := []Info{
		{Type: TypeOrganic, SourceName: "Google"},
		{Type: TypeOrganic, SourceName: "Google"},
		{Type: TypeSocial, SourceName: "Reddit"},
		{Type: TypeDirect},
		{Type: TypeInternal, Domain: "myapp.com"},
		{Type: TypeReferral, Domain: "example.org"},
	}

	top := TopReferrers(infos, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(top))
	}
	if top[0].Source != "Google" || top[0].Count != 2 {
		t.Errorf("unexpected first row: %+v", top[0])
	}
}
