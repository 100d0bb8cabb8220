package dto

import "ai-sitebuilder-be/pkg/publish"

type SuggestDomainsRequest struct {
	Description string `json:"description" validate:"required,max=1000"`
}

type SuggestDomainsResponse struct {
	Ideas     []string               `json:"ideas"`
	Checked   bool                   `json:"checked"`
	Available []publish.Availability `json:"available"`
}

type CheckDomainRequest struct {
	Domain string `query:"domain" validate:"required,max=253"`
}

type CheckDomainResponse struct {
	Domain       publish.Availability   `json:"domain"`
	Alternatives []publish.Availability `json:"alternatives"`
}
