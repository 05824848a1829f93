// File: internal/session/store.go
package session

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRowID pins the session to a single row: at most one session per
// device, overwritten on each new login.
const sessionRowID = 1

// Record is the durable local session: who is logged in and with what token.
type Record struct {
	ID        int       `gorm:"primaryKey"`
	AuthToken string    `gorm:"column:auth_token"`
	UserID    int       `gorm:"column:user_id"`
	UserName  string    `gorm:"column:user_name"`
	UserEmail string    `gorm:"column:user_email"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM.
func (Record) TableName() string {
	return "session"
}

// PendingPushToken holds an FCM token that arrived while no session was
// active. It is flushed to the backend on the next successful login.
type PendingPushToken struct {
	ID        int       `gorm:"primaryKey"`
	Token     string    `gorm:"column:token"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (PendingPushToken) TableName() string {
	return "pending_push_tokens"
}

// Store persists the session in the local SQLite database. Reads are served
// from an in-memory copy so login-state queries never touch disk; the copy is
// loaded once at construction and kept in sync on every write.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	mu      sync.RWMutex
	current *Record
}

// NewStore migrates the session tables and loads any persisted session.
// A corrupt store is logged and treated as logged-out, never propagated.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Record{}, &PendingPushToken{}); err != nil {
		return nil, err
	}

	s := &Store{db: db, logger: logger.Named("session")}

	var rec Record
	err := db.First(&rec, sessionRowID).Error
	switch {
	case err == nil:
		s.current = &rec
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No session persisted: logged out.
	default:
		s.logger.Warn("Failed to load persisted session, proceeding as logged out", zap.Error(err))
	}

	return s, nil
}

// Save persists a new session, overwriting any previous one.
func (s *Store) Save(token string, userID int, name, email string) error {
	rec := Record{
		ID:        sessionRowID,
		AuthToken: token,
		UserID:    userID,
		UserName:  name,
		UserEmail: email,
		UpdatedAt: time.Now(),
	}

	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err), zap.Int("userID", userID))
		return err
	}

	s.mu.Lock()
	s.current = &rec
	s.mu.Unlock()

	s.logger.Info("Session saved", zap.Int("userID", userID))
	return nil
}

// Token returns the current auth token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AuthToken
}

// UserID returns the current user id and whether a session is active.
func (s *Store) UserID() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return 0, false
	}
	return s.current.UserID, true
}

// UserName returns the stored display name of the logged-in user.
func (s *Store) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.UserName
}

// UserEmail returns the stored email of the logged-in user.
func (s *Store) UserEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.UserEmail
}

// IsAuthenticated reports whether a session with a token is active.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Clear removes the session. It is idempotent and never fails from the
// caller's perspective: a storage fault is logged and the in-memory state is
// cleared regardless, so the user always ends up logged out.
func (s *Store) Clear() {
	if err := s.db.Delete(&Record{}, sessionRowID).Error; err != nil {
		s.logger.Warn("Failed to clear persisted session, clearing in-memory state anyway", zap.Error(err))
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.logger.Info("Session cleared")
}

// SavePendingPushToken stores an FCM token that could not be forwarded
// because no session was active.
func (s *Store) SavePendingPushToken(token string) error {
	rec := PendingPushToken{ID: 1, Token: token, UpdatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		s.logger.Warn("Failed to persist pending push token", zap.Error(err))
		return err
	}
	return nil
}

// TakePendingPushToken returns the stored un-sent FCM token, if any, and
// removes it. The caller is responsible for actually forwarding it.
func (s *Store) TakePendingPushToken() (string, bool) {
	var rec PendingPushToken
	err := s.db.First(&rec, 1).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Failed to read pending push token", zap.Error(err))
		}
		return "", false
	}
	if err := s.db.Delete(&PendingPushToken{}, 1).Error; err != nil {
		s.logger.Warn("Failed to delete pending push token after take", zap.Error(err))
	}
	return rec.Token, true
}
