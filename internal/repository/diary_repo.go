package repository

import (
	"context"
	"errors"
	"time"

	"github.com/moodpair/moodpair/internal/db"
	"github.com/moodpair/moodpair/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DiaryRepository provides data access for diary entries, mood check-ins
// and likes.
type DiaryRepository struct {
	db *gorm.DB
}

// NewDiaryRepository creates a new repository bound to the given DB connection.
func NewDiaryRepository(database *gorm.DB) *DiaryRepository {
	return &DiaryRepository{db: database}
}

func (r *DiaryRepository) CreateEntry(ctx context.Context, entry *db.DiaryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetEntry loads an entry owned by userID.
func (r *DiaryRepository) GetEntry(ctx context.Context, entryID, userID uint64) (*db.DiaryEntry, error) {
	var entry db.DiaryEntry
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAnyEntry loads an entry regardless of owner. Used for like targets.
func (r *DiaryRepository) GetAnyEntry(ctx context.Context, entryID uint64) (*db.DiaryEntry, error) {
	var entry db.DiaryEntry
	if err := r.db.WithContext(ctx).First(&entry, entryID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry persists mutable fields of an owned entry.
func (r *DiaryRepository) UpdateEntry(ctx context.Context, entry *db.DiaryEntry) error {
	result := r.db.WithContext(ctx).
		Model(&db.DiaryEntry{}).
		Where("id = ? AND user_id = ?", entry.ID, entry.UserID).
		Updates(map[string]interface{}{
			"title":     entry.Title,
			"content":   entry.Content,
			"image_url": entry.ImageURL,
			"is_public": entry.IsPublic,
			"date":      entry.Date,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DiaryRepository) DeleteEntry(ctx context.Context, entryID, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&db.DiaryEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListEntries returns a user's entries newest first with cursor-based
// pagination.
//
// Behavior:
//   - Ordered by date DESC, id DESC.
//   - The opaque token encodes the last row of the previous page.
//   - Returns a next token when more rows remain.
func (r *DiaryRepository) ListEntries(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.DiaryEntry, *string, error) {
	var entries []db.DiaryEntry

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.Date()
		query = query.Where(
			"(date < ? OR (date = ? AND id < ?))",
			ts, ts, cursor.EntryID,
		)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(entries) > limit {
		last := entries[limit-1]
		token, _ := pagination.Encode(pagination.FromEntry(last.ID, last.Date))
		nextToken = &token
		entries = entries[:limit]
	}

	return entries, nextToken, nil
}

// RecentEntries returns the user's most recent entries, newest first.
func (r *DiaryRepository) RecentEntries(ctx context.Context, userID uint64, limit int) ([]db.DiaryEntry, error) {
	var entries []db.DiaryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *DiaryRepository) CreateMood(ctx context.Context, mood *db.MoodEntry) error {
	return r.db.WithContext(ctx).Create(mood).Error
}

// LikeEntry records a like. Replays overwrite nothing: the composite PK
// keeps one row per (entry, user).
func (r *DiaryRepository) LikeEntry(ctx context.Context, entryID, userID uint64) error {
	like := db.DiaryLike{EntryID: entryID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
}

func (r *DiaryRepository) UnlikeEntry(ctx context.Context, entryID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ? AND user_id = ?", entryID, userID).
		Delete(&db.DiaryLike{}).Error
}

// CountLikesReceived counts likes on the user's entries since the given
// time. DB fallback behind the cached per-user counter.
func (r *DiaryRepository) CountLikesReceived(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("diary_likes l").
		Joins("JOIN diary_entries e ON l.entry_id = e.id").
		Where("e.user_id = ? AND l.created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// IsNotFound reports whether err is the store's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
