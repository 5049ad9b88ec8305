package diary

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/moodpair/moodpair/internal/app"
	"github.com/moodpair/moodpair/internal/db"
	svcErr "github.com/moodpair/moodpair/internal/errors"
	"github.com/moodpair/moodpair/internal/repository"
	"github.com/moodpair/moodpair/internal/utils/pagination"
)

// Service implements the diary API: entry CRUD, mood check-ins and likes.
type Service struct {
	appCtx  *app.AppContext
	diaries *repository.DiaryRepository
}

// NewService creates a new diary service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		diaries: repository.NewDiaryRepository(appCtx.DB),
	}
}

// EntryInput carries caller-supplied entry fields.
type EntryInput struct {
	Title    string
	Content  string
	ImageURL string
	IsPublic bool
	Date     time.Time
}

// CreateEntry writes a new diary entry for the user.
// Empty content is rejected; a zero date defaults to today.
func (s *Service) CreateEntry(ctx context.Context, userID uint64, input EntryInput) (*db.DiaryEntry, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, svcErr.InvalidArgument("entry content must not be empty")
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	entry := &db.DiaryEntry{
		UserID:   userID,
		Title:    input.Title,
		Content:  input.Content,
		ImageURL: input.ImageURL,
		IsPublic: input.IsPublic,
		Date:     date,
	}
	if err := s.diaries.CreateEntry(ctx, entry); err != nil {
		s.appCtx.Logger.Error("create entry failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return entry, nil
}

// GetEntry returns one of the user's own entries.
func (s *Service) GetEntry(ctx context.Context, userID, entryID uint64) (*db.DiaryEntry, error) {
	entry, err := s.diaries.GetEntry(ctx, entryID, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return entry, nil
}

// ListEntries returns the user's entries newest first, with an opaque
// cursor token for the next page.
func (s *Service) ListEntries(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]db.DiaryEntry, *string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries, next, err := s.diaries.ListEntries(ctx, userID, paginationToken, limit)
	if errors.Is(err, pagination.ErrBadToken) {
		return nil, nil, svcErr.InvalidArgument("bad page token")
	}
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}
	return entries, next, nil
}

// UpdateEntry rewrites an owned entry's mutable fields.
func (s *Service) UpdateEntry(ctx context.Context, userID, entryID uint64, input EntryInput) (*db.DiaryEntry, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, svcErr.InvalidArgument("entry content must not be empty")
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	entry := &db.DiaryEntry{
		ID:       entryID,
		UserID:   userID,
		Title:    input.Title,
		Content:  input.Content,
		ImageURL: input.ImageURL,
		IsPublic: input.IsPublic,
		Date:     date,
	}
	if err := s.diaries.UpdateEntry(ctx, entry); err != nil {
		return nil, svcErr.Map(err)
	}
	updated, err := s.diaries.GetEntry(ctx, entryID, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return updated, nil
}

// DeleteEntry removes an owned entry.
func (s *Service) DeleteEntry(ctx context.Context, userID, entryID uint64) error {
	if err := s.diaries.DeleteEntry(ctx, entryID, userID); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// CheckinMood records a mood check-in for today.
func (s *Service) CheckinMood(ctx context.Context, userID uint64, score int, weather string) (*db.MoodEntry, error) {
	if score < 1 || score > 5 {
		return nil, svcErr.InvalidArgument("mood score must be between 1 and 5")
	}
	if !validWeather(weather) {
		return nil, svcErr.InvalidArgument("unknown weather tag")
	}

	mood := &db.MoodEntry{
		UserID:  userID,
		Score:   score,
		Weather: weather,
		Date:    time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := s.diaries.CreateMood(ctx, mood); err != nil {
		return nil, svcErr.Map(err)
	}
	return mood, nil
}

// LikeEntry records a like on a public entry and invalidates the entry
// owner's cached like count. Liking your own entry is rejected.
func (s *Service) LikeEntry(ctx context.Context, userID, entryID uint64) error {
	entry, err := s.diaries.GetAnyEntry(ctx, entryID)
	if err != nil {
		return svcErr.Map(err)
	}
	if entry.UserID == userID {
		return svcErr.InvalidArgument("cannot like your own entry")
	}
	if !entry.IsPublic {
		return svcErr.ErrForbidden
	}

	if err := s.diaries.LikeEntry(ctx, entryID, userID); err != nil {
		return svcErr.Map(err)
	}
	_ = s.appCtx.RedisCache.InvalidateLikeCount(ctx, entry.UserID)
	return nil
}

// UnlikeEntry removes a like and invalidates the owner's cached count.
func (s *Service) UnlikeEntry(ctx context.Context, userID, entryID uint64) error {
	entry, err := s.diaries.GetAnyEntry(ctx, entryID)
	if err != nil {
		return svcErr.Map(err)
	}
	if err := s.diaries.UnlikeEntry(ctx, entryID, userID); err != nil {
		return svcErr.Map(err)
	}
	_ = s.appCtx.RedisCache.InvalidateLikeCount(ctx, entry.UserID)
	return nil
}

// LikeCount returns how many likes the user's entries received inside the
// matching window.
// Cache-first strategy: Redis counter with TTL, DB fallback on miss.
func (s *Service) LikeCount(ctx context.Context, userID uint64) (int64, error) {
	if count, hit, _ := s.appCtx.RedisCache.GetLikeCount(ctx, userID); hit {
		return count, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -s.appCtx.Config.Match.WindowDays)
	count, err := s.diaries.CountLikesReceived(ctx, userID, since)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.UpdateLikeCount(ctx, userID, count, time.Hour)
	return count, nil
}

func validWeather(weather string) bool {
	for _, tag := range db.WeatherTags {
		if tag == weather {
			return true
		}
	}
	return false
}
