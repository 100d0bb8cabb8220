package model

import (
	"time"

	"gorm.io/datatypes"
)

type ProjectSession struct {
	ChatId    int64          `gorm:"column:chat_id;type:bigint;primaryKey;autoIncrement:false"`
	Session   datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (ProjectSession) TableName() string {
	return "sessions"
}

// ProjectSessionPayload is the JSON shape stored in the session column.
type ProjectSessionPayload struct {
	Projects            []ProjectStatePayload `json:"projects"`
	CurrentProjectIndex int                   `json:"currentProjectIndex"`
}

type ProjectStatePayload struct {
	ProjectId       string            `json:"projectId"`
	Answers         map[string]any    `json:"answers,omitempty"`
	Sections        []string          `json:"sections,omitempty"`
	Patterns        map[string]string `json:"patterns,omitempty"`
	GeneratedFolder string            `json:"generatedFolder,omitempty"`
	Repo            string            `json:"repo,omitempty"`
	SiteURL         string            `json:"siteUrl,omitempty"`
	Domain          string            `json:"domain,omitempty"`
}
