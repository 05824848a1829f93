// File: internal/searchhistory/model.go
package searchhistory

import (
	"time"
)

// Entry is one remembered search query. Re-searching an existing query
// refreshes its timestamp instead of duplicating the entry, so ordering is
// always by recency.
type Entry struct {
	ID        int
	Query     string
	UpdatedAt time.Time
}

// EntryDTO is the wire shape of a search-history entry.
type EntryDTO struct {
	ID        int       `json:"id"`
	Query     string    `json:"query"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDomain maps the wire entry to the domain model. Pure function of the DTO.
func (d EntryDTO) ToDomain() Entry {
	return Entry{
		ID:        d.ID,
		Query:     d.Query,
		UpdatedAt: d.UpdatedAt,
	}
}

// CacheEntry is the local SQLite mirror of an entry, keyed by the normalized
// query so recency dedupe holds across process restarts too.
type CacheEntry struct {
	NormalizedQuery string    `gorm:"primaryKey;column:normalized_query"`
	Query           string    `gorm:"column:query"`
	RemoteID        int       `gorm:"column:remote_id"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM.
func (CacheEntry) TableName() string {
	return "search_history_cache"
}

// saveRequest is the wire body for recording a search.
type saveRequest struct {
	Query string `json:"query"`
}
