package inventory

import (
	"time"

	"github.com/xiebiao/shoptrack/internal/domain/inventory"
)

// LogEntryInfo 库存流水
type LogEntryInfo struct {
	ID          uint      `json:"id"`
	ProductID   uint      `json:"product_id"`
	Delta       int       `json:"delta"`
	ChangeType  string    `json:"change_type"`
	BeforeStock int       `json:"before_stock"`
	AfterStock  int       `json:"after_stock"`
	ActorID     *uint     `json:"actor_id,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToLogEntryInfo 实体转DTO
func ToLogEntryInfo(e *inventory.LogEntry) *LogEntryInfo {
	return &LogEntryInfo{
		ID:          e.ID,
		ProductID:   e.ProductID,
		Delta:       e.Delta,
		ChangeType:  string(e.ChangeType),
		BeforeStock: e.BeforeStock,
		AfterStock:  e.AfterStock,
		ActorID:     e.ActorID,
		Reference:   e.Reference,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
	}
}

func toLogEntryInfos(entries []*inventory.LogEntry) []*LogEntryInfo {
	out := make([]*LogEntryInfo, len(entries))
	for i, e := range entries {
		out[i] = ToLogEntryInfo(e)
	}
	return out
}
