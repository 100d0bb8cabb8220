package service

import (
	"context"
	"errors"
	"testing"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/pkg/blockedit"
	"ai-sitebuilder-be/pkg/publish"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// registry answers from a fixed table. Domains missing from it fail the lookup.
type registry struct {
	available map[string]bool
	checked   []string
}

func (r *registry) Check(_ context.Context, domain string) (*publish.Availability, error) {
	r.checked = append(r.checked, domain)
	ok, known := r.available[domain]
	if !known {
		return nil, errors.New("registrar unavailable")
	}
	a := &publish.Availability{Domain: domain, Available: ok}
	if ok {
		a.Price = 12.5
		a.BuyURL = publish.BuyLink(domain)
	}
	return a, nil
}

func TestSuggestDomains_ChecksIdeas(t *testing.T) {
	llm := &scriptedLLM{reply: "1. CrumbCo.com\n2. crumb.ai\n3. fresh loaf.app\n4. loafly.app"}
	reg := &registry{available: map[string]bool{"crumbco.com": false, "crumb.ai": true, "loafly.app": true}}

	res, err := NewDomainService(llm, reg, nopLogger()).
		SuggestDomains(context.Background(), &dto.SuggestDomainsRequest{Description: "Neighbourhood bakery"})
	require.NoError(t, err)

	assert.Equal(t, []string{"crumbco.com", "crumb.ai", "loafly.app"}, res.Ideas)
	assert.True(t, res.Checked)
	require.Len(t, res.Available, 2)
	assert.Equal(t, "crumb.ai", res.Available[0].Domain)
	assert.Equal(t, "loafly.app", res.Available[1].Domain)

	require.Len(t, llm.history, 1)
	assert.Contains(t, llm.history[0].Content, `Project description: "Neighbourhood bakery"`)
	assert.Contains(t, llm.history[0].Content, "10 creative")
}

func TestSuggestDomains_WithoutChecker(t *testing.T) {
	llm := &scriptedLLM{reply: "crumbco.com"}

	res, err := NewDomainService(llm, nil, nopLogger()).
		SuggestDomains(context.Background(), &dto.SuggestDomainsRequest{Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"crumbco.com"}, res.Ideas)
	assert.False(t, res.Checked)
	assert.Empty(t, res.Available)
}

func TestSuggestDomains_UnusableReply(t *testing.T) {
	for name, llm := range map[string]*scriptedLLM{
		"provider down": {err: errProviderDown},
		"no domains":    {reply: "Sorry, I cannot help with that."},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewDomainService(llm, nil, nopLogger()).
				SuggestDomains(context.Background(), &dto.SuggestDomainsRequest{Description: "d"})
			assert.ErrorIs(t, err, blockedit.ErrCollaborator)
		})
	}
}

func TestCheckDomain_Available(t *testing.T) {
	reg := &registry{available: map[string]bool{"crumbco.com": true}}

	res, err := NewDomainService(&scriptedLLM{}, reg, nopLogger()).
		CheckDomain(context.Background(), &dto.CheckDomainRequest{Domain: " CrumbCo.com "})
	require.NoError(t, err)
	assert.True(t, res.Domain.Available)
	assert.Equal(t, publish.BuyLink("crumbco.com"), res.Domain.BuyURL)
	assert.Empty(t, res.Alternatives)
	assert.Equal(t, []string{"crumbco.com"}, reg.checked)
}

func TestCheckDomain_TakenSuggestsAlternatives(t *testing.T) {
	reg := &registry{available: map[string]bool{
		"crumbco.com":        false,
		"crumbco-com.app":    false,
		"crumbco-ai.app":     true,
		"crumbco-org.app":    true,
		"crumbco-app.app":    true,
		"crumbco-tools.app":  true,
		"crumbco-online.app": true,
		"crumbco-site.app":   true,
	}}

	res, err := NewDomainService(&scriptedLLM{}, reg, nopLogger()).
		CheckDomain(context.Background(), &dto.CheckDomainRequest{Domain: "crumbco.com"})
	require.NoError(t, err)
	assert.False(t, res.Domain.Available)

	got := make([]string, 0, len(res.Alternatives))
	for _, a := range res.Alternatives {
		got = append(got, a.Domain)
	}
	assert.Equal(t, []string{"crumbco-ai.app", "crumbco-org.app", "crumbco-app.app", "crumbco-tools.app", "crumbco-online.app"}, got)
	assert.NotContains(t, reg.checked, "crumbco-site.app")
}

func TestCheckDomain_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewDomainService(&scriptedLLM{}, nil, nopLogger()).CheckDomain(ctx, &dto.CheckDomainRequest{Domain: "crumbco.com"})
	assert.ErrorIs(t, err, publish.ErrDomainCheckerUnset)

	reg := &registry{available: map[string]bool{}}
	svc := NewDomainService(&scriptedLLM{}, reg, nopLogger())

	_, err = svc.CheckDomain(ctx, &dto.CheckDomainRequest{Domain: "not a domain"})
	assert.ErrorIs(t, err, publish.ErrInvalidDomain)
	assert.Empty(t, reg.checked)

	_, err = svc.CheckDomain(ctx, &dto.CheckDomainRequest{Domain: "crumbco.com"})
	assert.ErrorIs(t, err, blockedit.ErrCollaborator)
}
