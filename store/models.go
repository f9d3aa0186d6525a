package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PageAnalysis is one persisted content analysis, keyed for memoization by
// the content hash. The full result is stored as a JSON document; the
// relational columns exist for lookups and dashboards.
type PageAnalysis struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentHash string         `gorm:"size:32;uniqueIndex;not null" json:"contentHash"`
	Title       string         `gorm:"size:512" json:"title"`
	Score       float64        `json:"score"`
	Degraded    bool           `json:"degraded"`
	Result      datatypes.JSON `gorm:"not null" json:"result"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (PageAnalysis) TableName() string { return "page_analysis" }

func (p *PageAnalysis) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
