package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// HtmlBlock is one row of the vector index. The dimension is left open so the
// embedding provider can be swapped; a scope never mixes dimensions.
type HtmlBlock struct {
	Id        string          `gorm:"type:text;primaryKey"`
	OwnerId   int64           `gorm:"type:bigint;primaryKey;autoIncrement:false"`
	ProjectId string          `gorm:"type:text;primaryKey"`
	Tag       string          `gorm:"type:text;not null"`
	Content   string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (HtmlBlock) TableName() string {
	return "html_blocks"
}
