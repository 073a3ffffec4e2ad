package factcheck

import (
	"net/url"
	"strings"
)

// SourceTier buckets evidence sources by editorial authority. The tier is
// surfaced to the verdict model as context; it never changes evidence
// ordering or filtering.
type SourceTier string

const (
	TierPrimary   SourceTier = "primary"   // government, academic, standards bodies
	TierSecondary SourceTier = "secondary" // established news and reference outlets
	TierTertiary  SourceTier = "tertiary"  // everything else
)

var primaryDomains = map[string]bool{
	"who.int":        true,
	"un.org":         true,
	"europa.eu":      true,
	"nature.com":     true,
	"science.org":    true,
	"nejm.org":       true,
	"thelancet.com":  true,
	"pubmed.ncbi.nlm.nih.gov": true,
	"arxiv.org":      true,
	"ourworldindata.org": true,
}

var secondaryDomains = map[string]bool{
	"reuters.com":        true,
	"apnews.com":         true,
	"bbc.com":            true,
	"bbc.co.uk":          true,
	"nytimes.com":        true,
	"theguardian.com":    true,
	"economist.com":      true,
	"ft.com":             true,
	"wikipedia.org":      true,
	"britannica.com":     true,
	"en.wikipedia.org":   true,
}

// ClassifySource maps a URL to its authority tier. Unparseable URLs are
// tertiary.
func ClassifySource(rawURL string) SourceTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return TierTertiary
	}

	host := strings.ToLower(parsed.Host)
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	host = strings.TrimPrefix(host, "www.")

	if matchDomain(host, primaryDomains) {
		return TierPrimary
	}
	if matchDomain(host, secondaryDomains) {
		return TierSecondary
	}

	// Government and academic TLDs are authoritative regardless of listing.
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.HasSuffix(host, ".ac.uk") || strings.Contains(host, ".gov.") {
		return TierPrimary
	}

	return TierTertiary
}

func matchDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
