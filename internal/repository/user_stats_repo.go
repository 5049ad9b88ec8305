package repository

import (
	"context"
	"time"

	"github.com/moodpair/moodpair/internal/db"

	"gorm.io/gorm"
)

// UserStatsRepository is the read side of the matching engine: it builds
// the candidate pool and loads the per-user aggregates the feature
// extractor consumes.
type UserStatsRepository struct {
	db *gorm.DB
}

// NewUserStatsRepository creates a new repository bound to the given DB connection.
func NewUserStatsRepository(database *gorm.DB) *UserStatsRepository {
	return &UserStatsRepository{db: database}
}

// EligibleUserIDs returns the candidate pool for a daily run: users who are
// not currently pairing, have no match record for matchDate, and are not
// party to a pending exchange request.
//
// Because the pool excludes already-handled users at build time, a repeated
// run over the same day is a per-user no-op.
func (r *UserStatsRepository) EligibleUserIDs(ctx context.Context, matchDate time.Time) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id").
		Where("u.is_matching = ?", false).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM match_records m
				WHERE m.user_id = u.id
				  AND m.match_date = ?
			)`, matchDate).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM match_requests q
				WHERE (q.requester_id = u.id OR q.recipient_id = u.id)
				  AND q.status = ?
			)`, db.StatusPending).
		Order("u.id").
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DiaryEntriesSince returns a user's diary entries dated on or after since,
// oldest first.
func (r *UserStatsRepository) DiaryEntriesSince(ctx context.Context, userID uint64, since time.Time) ([]db.DiaryEntry, error) {
	var entries []db.DiaryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// MoodEntriesSince returns a user's mood check-ins dated on or after since.
func (r *UserStatsRepository) MoodEntriesSince(ctx context.Context, userID uint64, since time.Time) ([]db.MoodEntry, error) {
	var moods []db.MoodEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC, id ASC").
		Find(&moods).Error
	return moods, err
}

// LikeCountSince counts likes received on the user's entries inside the
// trailing window.
func (r *UserStatsRepository) LikeCountSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("diary_likes l").
		Joins("JOIN diary_entries e ON l.entry_id = e.id").
		Where("e.user_id = ? AND l.created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}
