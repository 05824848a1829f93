// File: internal/searchhistory/repository.go
package searchhistory

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"sipaling_preloved_client/internal/common"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes the search-history resource group. The server list is
// the source of truth; a local SQLite mirror keeps recency ordering and
// dedupe stable across restarts and momentary backend unavailability.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, query string) error
	Clear(ctx context.Context) error
}

type apiRepository struct {
	client   *transport.Client
	sessions *session.Store
	db       *gorm.DB
	logger   *zap.Logger
}

var _ Repository = (*apiRepository)(nil)

// NewRepository creates the API-backed search-history repository and
// migrates its local cache table.
func NewRepository(client *transport.Client, sessions *session.Store, db *gorm.DB, logger *zap.Logger) (Repository, error) {
	if err := db.AutoMigrate(&CacheEntry{}); err != nil {
		return nil, err
	}
	return &apiRepository{
		client:   client,
		sessions: sessions,
		db:       db,
		logger:   logger.Named("searchhistory"),
	}, nil
}

// normalizeQuery collapses query spelling variants ("Sepatu ", "sepatu") to
// one cache key.
func normalizeQuery(query string) string {
	return slug.Make(strings.TrimSpace(query))
}

// List fetches the server history and merges it into the local mirror.
// The result is deduped by normalized query and ordered newest first.
func (r *apiRepository) List(ctx context.Context) ([]Entry, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   "/search-history",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}

	dtos, appErr := common.DecodeData[[]EntryDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	for _, dto := range dtos {
		r.upsertCache(dto.Query, dto.ID, dto.UpdatedAt)
	}

	return r.readCache()
}

// Save records a search on the server and refreshes the local mirror. The
// backend updates the timestamp of an existing query rather than duplicating
// it; the cache applies the same rule via its normalized-query key.
func (r *apiRepository) Save(ctx context.Context, query string) error {
	token := r.sessions.Token()
	if token == "" {
		return common.ErrUnauthenticated
	}
	if strings.TrimSpace(query) == "" {
		return common.NewAppError(common.KindValidationFailed, "query: The query field is required.")
	}

	_, err := transport.Exchange(ctx, r.client, transport.Request{
		Method:   http.MethodPost,
		Path:     "/search-history",
		JSONBody: saveRequest{Query: query},
		Token:    token,
	})
	if err != nil {
		r.logger.Warn("Failed to record search on server", zap.Error(err))
		return err
	}

	r.upsertCache(query, 0, time.Now())
	return nil
}

// Clear wipes the history on the server and locally.
func (r *apiRepository) Clear(ctx context.Context) error {
	token := r.sessions.Token()
	if token == "" {
		return common.ErrUnauthenticated
	}

	_, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodDelete,
		Path:   "/search-history",
		Token:  token,
	})
	if err != nil {
		return err
	}

	if err := r.db.Where("1 = 1").Delete(&CacheEntry{}).Error; err != nil {
		r.logger.Warn("Failed to clear search-history cache", zap.Error(err))
	}
	return nil
}

// upsertCache writes one entry into the mirror, keeping the newest timestamp
// for its normalized query. Cache faults are logged, never surfaced: the
// mirror is an optimization, not the source of truth.
func (r *apiRepository) upsertCache(query string, remoteID int, updatedAt time.Time) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return
	}

	var existing CacheEntry
	err := r.db.First(&existing, "normalized_query = ?", normalized).Error
	if err == nil && existing.UpdatedAt.After(updatedAt) {
		return // mirror already holds a fresher record
	}

	entry := CacheEntry{
		NormalizedQuery: normalized,
		Query:           query,
		RemoteID:        remoteID,
		UpdatedAt:       updatedAt,
	}
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
		r.logger.Warn("Failed to upsert search-history cache", zap.Error(err), zap.String("query", query))
	}
}

func (r *apiRepository) readCache() ([]Entry, error) {
	var cached []CacheEntry
	if err := r.db.Order("updated_at DESC").Find(&cached).Error; err != nil {
		r.logger.Warn("Failed to read search-history cache", zap.Error(err))
		return nil, common.NewAppError(common.KindHTTPError, "Gagal membaca riwayat pencarian.")
	}

	entries := make([]Entry, 0, len(cached))
	for _, c := range cached {
		entries = append(entries, Entry{
			ID:        c.RemoteID,
			Query:     c.Query,
			UpdatedAt: c.UpdatedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}
