package publish

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MaxDomainOffers caps how many available domains a lookup returns.
const MaxDomainOffers = 5

var (
	ErrInvalidDomain      = errors.New("invalid domain")
	ErrDomainCheckerUnset = errors.New("domain availability check is not configured")
)

var (
	ideaPrefix    = regexp.MustCompile(`^[0-9.\-\s]+`)
	ideaPattern   = regexp.MustCompile(`^[a-z0-9-]+\.[a-z]{2,}$`)
	domainPattern = regexp.MustCompile(`^[a-z0-9-]{1,63}(\.[a-z0-9-]{1,63})+$`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]`)
)

// AlternativeSuffixes are appended to a taken name, as <name>-<suffix>.app.
var AlternativeSuffixes = []string{"com", "ai", "net", "org", "app", "tools", "online", "site", "web", "dev"}

// Availability is one registrar answer. Price is in USD.
type Availability struct {
	Domain    string  `json:"domain"`
	Available bool    `json:"available"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency,omitempty"`
	BuyURL    string  `json:"buy_url,omitempty"`
}

type DomainChecker interface {
	Check(ctx context.Context, domain string) (*Availability, error)
}

// NormalizeDomain lowercases and trims domain and rejects anything that is not a
// dotted list of labels.
func NormalizeDomain(domain string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(domain))
	if !domainPattern.MatchString(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	return cleaned, nil
}

// ParseDomainIdeas reads one domain per line from an LLM answer. List markers are
// stripped and lines that do not look like name.tld are dropped.
func ParseDomainIdeas(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		d := strings.ToLower(strings.TrimSpace(ideaPrefix.ReplaceAllString(line, "")))
		if !ideaPattern.MatchString(d) || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// AlternativeDomains derives fallback names from a taken domain.
func AlternativeDomains(domain string) []string {
	name := nonAlnum.ReplaceAllString(strings.ToLower(strings.SplitN(domain, ".", 2)[0]), "")
	if name == "" {
		return nil
	}
	out := make([]string, 0, len(AlternativeSuffixes))
	for _, suffix := range AlternativeSuffixes {
		out = append(out, name+"-"+suffix+".app")
	}
	return out
}

func BuyLink(domain string) string {
	return "https://www.godaddy.com/domainsearch/find?checkAvail=1&domainToCheck=" + url.QueryEscape(domain)
}

// FirstAvailable checks candidates in order and returns up to limit available ones.
// Candidates that fail validation or the lookup are skipped.
func FirstAvailable(ctx context.Context, checker DomainChecker, candidates []string, limit int) []Availability {
	out := []Availability{}
	for _, c := range candidates {
		if len(out) >= limit || ctx.Err() != nil {
			break
		}
		domain, err := NormalizeDomain(c)
		if err != nil {
			continue
		}
		a, err := checker.Check(ctx, domain)
		if err != nil || !a.Available {
			continue
		}
		out = append(out, *a)
	}
	return out
}
