package match_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/moodpair/moodpair/internal/app"
	"github.com/moodpair/moodpair/internal/cache"
	"github.com/moodpair/moodpair/internal/config"
	"github.com/moodpair/moodpair/internal/db"
	apperr "github.com/moodpair/moodpair/internal/errors"
	"github.com/moodpair/moodpair/internal/service/match"
)

//
// Test helpers
//

// captureNotifier records delivered messages so tests can assert on the
// fire-and-forget notification path.
type captureNotifier struct {
	ch chan string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{ch: make(chan string, 4)}
}

func (n *captureNotifier) Notify(userID uint64, message string) {
	n.ch <- fmt.Sprintf("%d:%s", userID, message)
}

func (n *captureNotifier) wait(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-n.ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
		return ""
	}
}

// setupService spins up an in-memory SQLite DB, applies migrations,
// seeds the deterministic dataset, starts a miniredis, and wires
// everything into a matching Service.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) (*match.Service, *gorm.DB, *captureNotifier) {
	t.Helper()

	// In-memory SQLite
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))
	require.NoError(t, db.SeedMinimalTestData(dbase))

	// Fake Redis
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	notifier := newCaptureNotifier()
	appCtx := app.New(dbase, redisCache, logger, cfg)
	return match.NewService(appCtx, notifier), dbase, notifier
}

func seedPendingRequest(t *testing.T, dbase *gorm.DB, requesterID, recipientID uint64) {
	t.Helper()
	req := db.MatchRequest{
		RequesterID: requesterID,
		RecipientID: recipientID,
		RequestDate: time.Now().UTC().Truncate(24 * time.Hour),
		Status:      db.StatusPending,
	}
	require.NoError(t, dbase.Create(&req).Error)
}

//
// Tests
//

// TestRunDailyMatching pairs the two seeded users with overlapping diary
// vocabulary and identical mood history; the third user stays unpaired.
func TestRunDailyMatching(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	pairs, err := svc.RunDailyMatching(ctx, "olympic")
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, uint64(1), pairs[0].User1ID)
	assert.Equal(t, uint64(2), pairs[0].User2ID)
	assert.Greater(t, pairs[0].Score, 0.5)

	// symmetric accepted rows persisted
	var records []db.MatchRecord
	require.NoError(t, dbase.Order("user_id").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, db.StatusAccepted, records[0].Status)

	// the automatic run never flips the exchange flag
	var users []db.User
	require.NoError(t, dbase.Order("id").Find(&users).Error)
	for _, u := range users {
		assert.False(t, u.IsMatching)
	}
}

// TestRunDailyMatchingRerun verifies that running twice on the same day
// does not create duplicate pairings.
func TestRunDailyMatchingRerun(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	first, err := svc.RunDailyMatching(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.RunDailyMatching(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, dbase.Model(&db.MatchRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

// TestRunDailyMatchingSkipsFailedPair: a storage failure while persisting
// one pair must not abort the batch; later pairs still land.
func TestRunDailyMatchingSkipsFailedPair(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	// a fourth user so the run assembles two pairs: (1,2) then (3,4)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	user := db.User{ID: 4, Name: "user4", Email: "u4@test.com", PasswordHash: "x"}
	require.NoError(t, dbase.Create(&user).Error)
	entries := []db.DiaryEntry{
		{UserID: 3, Title: "two", Content: "quiet reading night", Date: today.AddDate(0, 0, -1)},
		{UserID: 4, Title: "one", Content: "reading by the window", IsPublic: true, Date: today.AddDate(0, 0, -2)},
	}
	require.NoError(t, dbase.Create(&entries).Error)

	// reject any record insert for user 1, so persisting pair (1,2) fails
	require.NoError(t, dbase.Exec(`
		CREATE TRIGGER reject_user1_records BEFORE INSERT ON match_records
		WHEN NEW.user_id = 1
		BEGIN SELECT RAISE(ABORT, 'simulated storage failure'); END`).Error)

	pairs, err := svc.RunDailyMatching(ctx, "")
	require.NoError(t, err)

	// only the second pair survives
	require.Len(t, pairs, 1)
	assert.Equal(t, uint64(3), pairs[0].User1ID)
	assert.Equal(t, uint64(4), pairs[0].User2ID)

	// the failed pair's transaction left nothing behind
	var records []db.MatchRecord
	require.NoError(t, dbase.Order("user_id").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(3), records[0].UserID)
	assert.Equal(t, uint64(4), records[1].UserID)
}

// TestRunDailyMatchingSkipsUnreadableCandidates: a feature-load failure
// drops the affected candidates without failing the run.
func TestRunDailyMatchingSkipsUnreadableCandidates(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	require.NoError(t, dbase.Exec("DROP TABLE mood_entries").Error)

	pairs, err := svc.RunDailyMatching(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pairs)

	var count int64
	require.NoError(t, dbase.Model(&db.MatchRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRequestExchangeCreatesPendingRequest(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	result, err := svc.RequestExchange(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, result.Status)
	assert.Contains(t, []uint64{2, 3}, result.PartnerID)

	var req db.MatchRequest
	require.NoError(t, dbase.First(&req).Error)
	assert.Equal(t, uint64(1), req.RequesterID)
	assert.Equal(t, result.PartnerID, req.RecipientID)
	assert.Equal(t, db.StatusPending, req.Status)
}

// TestRequestExchangePendingBlocks ensures a user already party to a
// pending request cannot open a second one, from either side.
func TestRequestExchangePendingBlocks(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	seedPendingRequest(t, dbase, 1, 2)

	_, err := svc.RequestExchange(ctx, 1)
	assert.ErrorIs(t, err, apperr.ErrNotEligible)

	_, err = svc.RequestExchange(ctx, 2)
	assert.ErrorIs(t, err, apperr.ErrNotEligible)

	// no second request was created
	var count int64
	require.NoError(t, dbase.Model(&db.MatchRequest{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRequestExchangeWhilePaired(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	require.NoError(t, dbase.Model(&db.User{}).Where("id = ?", 1).Update("is_matching", true).Error)

	_, err := svc.RequestExchange(ctx, 1)
	assert.ErrorIs(t, err, apperr.ErrNotEligible)
}

func TestRequestExchangeRateLimited(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < 3; i++ {
		rec := db.MatchRecord{
			UserID:    1,
			PartnerID: uint64(10 + i),
			MatchDate: today.AddDate(0, 0, -i),
			Status:    db.StatusAccepted,
		}
		require.NoError(t, dbase.Create(&rec).Error)
	}

	_, err := svc.RequestExchange(ctx, 1)
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
}

// TestRequestExchangeNoEligiblePartner expects a plain no_match result,
// with no request row, when every other user is unavailable.
func TestRequestExchangeNoEligiblePartner(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	require.NoError(t, dbase.Model(&db.User{}).Where("id IN ?", []uint64{2, 3}).Update("is_matching", true).Error)

	result, err := svc.RequestExchange(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, match.StatusNoMatch, result.Status)
	assert.Zero(t, result.PartnerID)

	var count int64
	require.NoError(t, dbase.Model(&db.MatchRequest{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRespondToRequestAccept(t *testing.T) {
	ctx := context.Background()
	svc, dbase, notifier := setupService(t)

	seedPendingRequest(t, dbase, 1, 2)

	require.NoError(t, svc.RespondToRequest(ctx, 1, 2, match.ActionAccept))

	var users []db.User
	require.NoError(t, dbase.Where("id IN ?", []uint64{1, 2}).Order("id").Find(&users).Error)
	assert.True(t, users[0].IsMatching)
	assert.True(t, users[1].IsMatching)

	// requester gets the acceptance message
	assert.Contains(t, notifier.wait(t), "accepted")
}

// TestRespondToRequestAcceptReplay: a second accept on the already
// resolved request reports not found and writes nothing new.
func TestRespondToRequestAcceptReplay(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	seedPendingRequest(t, dbase, 1, 2)
	require.NoError(t, svc.RespondToRequest(ctx, 1, 2, match.ActionAccept))

	err := svc.RespondToRequest(ctx, 1, 2, match.ActionAccept)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var count int64
	require.NoError(t, dbase.Model(&db.MatchRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRespondToRequestReject(t *testing.T) {
	ctx := context.Background()
	svc, dbase, notifier := setupService(t)

	seedPendingRequest(t, dbase, 1, 2)

	require.NoError(t, svc.RespondToRequest(ctx, 1, 2, match.ActionReject))

	var users []db.User
	require.NoError(t, dbase.Where("id IN ?", []uint64{1, 2}).Order("id").Find(&users).Error)
	assert.False(t, users[0].IsMatching)
	assert.False(t, users[1].IsMatching)

	var records []db.MatchRecord
	require.NoError(t, dbase.Find(&records).Error)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, db.StatusRejected, rec.Status)
	}

	assert.Contains(t, notifier.wait(t), "rejected")
}

func TestRespondToRequestInvalidAction(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	err := svc.RespondToRequest(ctx, 1, 2, "maybe")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	// nothing going on yet
	status, err := svc.GetStatus(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, match.StatusNoMatch, status.Status)

	// a pending request wins over history
	seedPendingRequest(t, dbase, 1, 2)
	status, err = svc.GetStatus(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, status.Status)
	assert.Equal(t, uint64(1), status.PartnerID)
}

// TestGetStatusCache: the second read is served from Redis, so a direct
// DB change without invalidation is not visible.
func TestGetStatusCache(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	seedPendingRequest(t, dbase, 1, 2)

	status, err := svc.GetStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, status.Status)

	// bypass the service; the cached descriptor stays pending
	require.NoError(t, dbase.Exec("DELETE FROM match_requests").Error)

	status, err = svc.GetStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, status.Status)
}

// TestGetStatusAfterRespond: resolving a request evicts both users'
// cached descriptors, so the very next reads see the accepted pairing.
func TestGetStatusAfterRespond(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	seedPendingRequest(t, dbase, 1, 2)

	// prime both cache entries with the pending descriptor
	for _, id := range []uint64{1, 2} {
		status, err := svc.GetStatus(ctx, id)
		require.NoError(t, err)
		require.Equal(t, db.StatusPending, status.Status)
	}

	require.NoError(t, svc.RespondToRequest(ctx, 1, 2, match.ActionAccept))

	status, err := svc.GetStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, db.StatusAccepted, status.Status)
	assert.Equal(t, uint64(2), status.PartnerID)

	status, err = svc.GetStatus(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, db.StatusAccepted, status.Status)
	assert.Equal(t, uint64(1), status.PartnerID)
}

func TestGetPartnerDiary(t *testing.T) {
	ctx := context.Background()
	svc, dbase, _ := setupService(t)

	// no accepted pairing between 1 and 2 yet
	_, err := svc.GetPartnerDiary(ctx, 1, 2)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	seedPendingRequest(t, dbase, 1, 2)
	require.NoError(t, svc.RespondToRequest(ctx, 1, 2, match.ActionAccept))

	entries, err := svc.GetPartnerDiary(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// newest first
	assert.Equal(t, "two", entries[0].Title)
	assert.Equal(t, "one", entries[1].Title)
}
