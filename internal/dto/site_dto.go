package dto

import (
	"time"

	"ai-sitebuilder-be/pkg/blockedit"
)

type BlockSummary struct {
	Id     string `json:"id"`
	Tag    string `json:"tag"`
	Length int    `json:"length"`
}

type IngestSiteResponse struct {
	ProjectId string         `json:"project_id"`
	Blocks    []BlockSummary `json:"blocks"`
	Purged    int64          `json:"purged"`
}

type EditSiteRequest struct {
	Instruction string `json:"instruction" validate:"required,max=2000"`
}

type EditSiteResponse struct {
	NothingToEdit bool                     `json:"nothing_to_edit"`
	Message       string                   `json:"message,omitempty"`
	BlockId       string                   `json:"block_id,omitempty"`
	Tag           string                   `json:"tag,omitempty"`
	Warnings      []string                 `json:"warnings"`
	Replaced      int                      `json:"replaced"`
	Total         int                      `json:"total"`
	Skipped       []blockedit.SkippedBlock `json:"skipped,omitempty"`
}

type EditFieldsRequest struct {
	Fields map[string]blockedit.FieldValue `json:"fields" validate:"required,min=1,dive"`
}

type EditFieldsResponse struct {
	Updated  []string                 `json:"updated"`
	Errors   []blockedit.FieldError   `json:"errors"`
	Replaced int                      `json:"replaced"`
	Total    int                      `json:"total"`
	Skipped  []blockedit.SkippedBlock `json:"skipped,omitempty"`
}

type AssembleSiteResponse struct {
	Replaced int                      `json:"replaced"`
	Total    int                      `json:"total"`
	Skipped  []blockedit.SkippedBlock `json:"skipped"`
}

type BlockResponse struct {
	Id        string                          `json:"id"`
	Tag       string                          `json:"tag"`
	Content   string                          `json:"content"`
	Fields    map[string]blockedit.FieldValue `json:"fields,omitempty"`
	CreatedAt time.Time                       `json:"created_at"`
	UpdatedAt *time.Time                      `json:"updated_at"`
}

type DocumentResponse struct {
	Path     string `json:"path"`
	Document string `json:"document"`
}

type GenerateSiteRequest struct {
	ProjectName string   `json:"project_name" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=1000"`
	Goal        string   `json:"goal" validate:"max=500"`
	WebsiteType string   `json:"website_type" validate:"max=100"`
	LogoURL     string   `json:"logo_url" validate:"omitempty,url"`
	Colors      []string `json:"colors" validate:"max=6,dive,hexcolor"`
	Images      []string `json:"images" validate:"max=12,dive,url"`
	Sections    []string `json:"sections" validate:"max=12"`
}

type GenerateSiteResponse struct {
	ProjectId string            `json:"project_id"`
	Sections  []string          `json:"sections"`
	Patterns  map[string]string `json:"patterns"`
	Blocks    []BlockSummary    `json:"blocks"`
}

type PublishSiteRequest struct {
	Target      string `json:"target" validate:"required,oneof=github minio"`
	NotifyEmail string `json:"notify_email" validate:"omitempty,email"`
}

type PublishSiteResponse struct {
	Target   string `json:"target"`
	URL      string `json:"url"`
	Revision string `json:"revision,omitempty"`
}

type AttachDomainRequest struct {
	Domain string `json:"domain" validate:"required,fqdn"`
}

type AttachDomainResponse struct {
	Domain  string `json:"domain"`
	SiteURL string `json:"site_url"`
}

type ProjectResponse struct {
	ProjectId       string            `json:"project_id"`
	Sections        []string          `json:"sections"`
	Patterns        map[string]string `json:"patterns,omitempty"`
	GeneratedFolder string            `json:"generated_folder"`
	Repo            string            `json:"repo,omitempty"`
	SiteURL         string            `json:"site_url,omitempty"`
	Domain          string            `json:"domain,omitempty"`
	Current         bool              `json:"current"`
}

type SiteAssembledMessage struct {
	OwnerId   int64  `json:"owner_id"`
	ProjectId string `json:"project_id"`
	Path      string `json:"path"`
	Replaced  int    `json:"replaced"`
	Total     int    `json:"total"`
}
