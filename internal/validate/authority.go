// Package validate rates reference sources: authority tier from the host and
// path of a source link, and optional reachability checks of live links.
package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/newsintel/internal/model"
)

// AuthorityClassifier classifies source links into authority tiers
type AuthorityClassifier struct {
	domainMap    map[string]model.AuthorityTier
	primary      []string
	secondary    []string
	pathPatterns []compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.AuthorityTier
}

// NewAuthorityClassifier creates a classifier; nil config uses the defaults.
//
// A domain entry containing a dot ("doi.org") matches that host and its
// subdomains. An entry without a dot ("reuters") matches any host label,
// so "reuters" covers reuters.com and www.reuters.co.uk alike.
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	c := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier, len(config.DomainMap)),
		primary:   normalizeDomains(config.PrimaryDomains),
		secondary: normalizeDomains(config.SecondaryDomains),
	}
	for host, tier := range config.DomainMap {
		c.domainMap[strings.ToLower(host)] = ParseTier(tier)
	}
	for _, pp := range config.PathPatterns {
		if re, err := regexp.Compile(pp.Pattern); err == nil {
			c.pathPatterns = append(c.pathPatterns, compiledPattern{pattern: re, tier: ParseTier(pp.Tier)})
		}
	}
	return c
}

// Classify returns the tier of a source link. Unparseable or host-less
// links are tertiary.
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.TierTertiary
	}

	host := strings.ToLower(parsed.Hostname())

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}
	if matchesAny(host, a.primary) {
		return model.TierPrimary
	}
	if matchesAny(host, a.secondary) {
		return model.TierSecondary
	}
	for _, cp := range a.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	// Institutional suffixes
	for _, suffix := range []string{".gov", ".edu", ".int", ".ac.uk", ".gov.uk"} {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}

	return model.TierTertiary
}

func matchesAny(host string, domains []string) bool {
	labels := strings.Split(host, ".")
	for _, d := range domains {
		if strings.Contains(d, ".") {
			if host == d || strings.HasSuffix(host, "."+d) {
				return true
			}
			continue
		}
		for _, l := range labels {
			if l == d {
				return true
			}
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// ParseTier converts a tier name or number to an AuthorityTier
func ParseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
