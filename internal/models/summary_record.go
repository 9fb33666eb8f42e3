package models

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the wire format of created_at.
const TimestampLayout = "2006-01-02 15:04:05"

// SummaryRecord is one completed summarization. Only Rating is mutable after insert.
type SummaryRecord struct {
	ID          uint      `json:"id"           gorm:"primaryKey;autoIncrement"`
	Filename    string    `json:"filename"     gorm:"type:varchar(255);not null"`
	SummaryText string    `json:"summary_text" gorm:"type:text;not null"`
	SummaryType string    `json:"summary_type" gorm:"type:varchar(50);default:'standard'"`
	PageCount   int       `json:"page_count"`
	WordCount   int       `json:"word_count"`
	Rating      int       `json:"rating"       gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index;autoCreateTime:false;<-:create"`
}

func (SummaryRecord) TableName() string { return "summary_history" }

// MarshalJSON renders created_at in TimestampLayout (UTC).
func (r SummaryRecord) MarshalJSON() ([]byte, error) {
	type plain SummaryRecord
	return json.Marshal(struct {
		plain
		CreatedAt string `json:"created_at"`
	}{
		plain:     plain(r),
		CreatedAt: r.CreatedAt.UTC().Format(TimestampLayout),
	})
}
