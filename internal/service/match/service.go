package match

import (
	"context"
	"time"

	"github.com/moodpair/moodpair/internal/app"
	"github.com/moodpair/moodpair/internal/db"
	svcErr "github.com/moodpair/moodpair/internal/errors"
	"github.com/moodpair/moodpair/internal/matching"
	"github.com/moodpair/moodpair/internal/repository"
)

// Actions accepted by RespondToRequest.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// Status values a descriptor can carry beyond the stored record states.
const StatusNoMatch = "no_match"

// Notifier delivers a text message to a user if currently reachable and
// silently no-ops otherwise. Implemented by the WebSocket registry.
type Notifier interface {
	Notify(userID uint64, message string)
}

// StatusDescriptor describes a user's current matching state.
type StatusDescriptor struct {
	Status    string `json:"status"`
	PartnerID uint64 `json:"partner_id,omitempty"`
	MatchDate string `json:"match_date,omitempty"`
}

// ExchangeResult is the outcome of a RequestExchange call.
type ExchangeResult struct {
	Status    string `json:"status"`
	PartnerID uint64 `json:"partner_id,omitempty"`
}

// PairResult is one pairing emitted and persisted by a daily run.
type PairResult struct {
	User1ID uint64  `json:"user1_id"`
	User2ID uint64  `json:"user2_id"`
	Score   float64 `json:"score"`
}

// Service implements the matching API: the automatic daily pairing run and
// the manual request/accept/reject exchange workflow.
// It contains the business logic on top of repository and cache layers.
type Service struct {
	appCtx   *app.AppContext
	stats    *repository.UserStatsRepository
	matches  *repository.MatchRepository
	diaries  *repository.DiaryRepository
	notifier Notifier
}

// NewService creates a new matching service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via the stats/match/diary repositories)
//   - RedisCache for status descriptors from AppContext
//   - Notifier for fire-and-forget user messages
func NewService(appCtx *app.AppContext, notifier Notifier) *Service {
	return &Service{
		appCtx:   appCtx,
		stats:    repository.NewUserStatsRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
		diaries:  repository.NewDiaryRepository(appCtx.DB),
		notifier: notifier,
	}
}

// today returns the run date at day granularity, UTC.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// RunDailyMatching executes one automatic pairing run.
//
// Behavior:
//   - Builds the candidate pool (not matched today, not pairing, no
//     pending request) with extracted features over the trailing window.
//   - Greedily assembles pairs by similarity; targetKeyword (optional)
//     boosts that keyword in the overlap sub-score.
//   - Persists each pair immediately as symmetric accepted rows. A
//     persistence failure for one pair is logged and does not abort the
//     rest of the batch.
func (s *Service) RunDailyMatching(ctx context.Context, targetKeyword string) ([]PairResult, error) {
	runDate := today()
	since := runDate.AddDate(0, 0, -s.appCtx.Config.Match.WindowDays)

	s.appCtx.Logger.Info("daily matching started", "date", runDate.Format("2006-01-02"), "target_keyword", targetKeyword)

	ids, err := s.stats.EligibleUserIDs(ctx, runDate)
	if err != nil {
		s.appCtx.Logger.Error("candidate pool query failed", "err", err)
		return nil, svcErr.Map(err)
	}

	candidates := make([]matching.UserFeatures, 0, len(ids))
	for _, id := range ids {
		features, err := s.loadFeatures(ctx, id, since)
		if err != nil {
			// one unreadable user shouldn't sink the run
			s.appCtx.Logger.Error("feature load failed, skipping candidate", "user", id, "err", err)
			continue
		}
		candidates = append(candidates, features)
	}

	pairs := matching.PairUp(candidates, targetKeyword)

	results := make([]PairResult, 0, len(pairs))
	for _, p := range pairs {
		if err := s.matches.CreatePairRecords(ctx, p.A.UserID, p.B.UserID, runDate); err != nil {
			// pairs are independent; log and continue
			s.appCtx.Logger.Error("pair persistence failed", "user1", p.A.UserID, "user2", p.B.UserID, "err", err)
			continue
		}
		_ = s.appCtx.RedisCache.InvalidateMatchStatus(ctx, p.A.UserID, p.B.UserID)
		results = append(results, PairResult{User1ID: p.A.UserID, User2ID: p.B.UserID, Score: p.Score})
	}

	s.appCtx.Logger.Info("daily matching finished", "candidates", len(candidates), "pairs", len(results))
	return results, nil
}

func (s *Service) loadFeatures(ctx context.Context, userID uint64, since time.Time) (matching.UserFeatures, error) {
	entries, err := s.stats.DiaryEntriesSince(ctx, userID, since)
	if err != nil {
		return matching.UserFeatures{}, err
	}
	moods, err := s.stats.MoodEntriesSince(ctx, userID, since)
	if err != nil {
		return matching.UserFeatures{}, err
	}
	likeCount, err := s.stats.LikeCountSince(ctx, userID, since)
	if err != nil {
		return matching.UserFeatures{}, err
	}
	return matching.ExtractFeatures(userID, entries, moods, likeCount), nil
}

// RequestExchange starts a manual diary-exchange request for the user.
//
// Behavior:
//   - ErrNotEligible if the user already has a pending request (either
//     direction) or an active pairing.
//   - ErrRateLimited if the user completed the capped number of matches
//     inside the trailing limit window.
//   - Otherwise a random eligible recipient gets a pending request.
//   - When nobody is eligible, returns status "no_match" with no side
//     effects.
func (s *Service) RequestExchange(ctx context.Context, userID uint64) (*ExchangeResult, error) {
	s.appCtx.Logger.Debug("RequestExchange called", "user", userID)

	isMatching, err := s.matches.UserIsMatching(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if isMatching {
		return nil, svcErr.ErrNotEligible
	}

	pending, err := s.matches.PendingRequestInvolving(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if pending != nil {
		return nil, svcErr.ErrNotEligible
	}

	limitSince := today().AddDate(0, 0, -s.appCtx.Config.Match.RateLimitDays)
	recent, err := s.matches.AcceptedMatchCountSince(ctx, userID, limitSince)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if recent >= int64(s.appCtx.Config.Match.RateLimitMatches) {
		return nil, svcErr.ErrRateLimited
	}

	recipientID, err := s.matches.RandomEligibleRecipient(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if recipientID == 0 {
		return &ExchangeResult{Status: StatusNoMatch}, nil
	}

	req := &db.MatchRequest{
		RequesterID: userID,
		RecipientID: recipientID,
		RequestDate: today(),
		Status:      db.StatusPending,
	}
	if err := s.matches.CreateRequest(ctx, req); err != nil {
		return nil, svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.InvalidateMatchStatus(ctx, userID, recipientID)

	s.appCtx.Logger.Info("exchange request created", "requester", userID, "recipient", recipientID)
	return &ExchangeResult{Status: db.StatusPending, PartnerID: recipientID}, nil
}

// RespondToRequest resolves a pending request directed at the responder.
//
// Behavior:
//   - ErrNotFound when no matching pending request exists; this also makes
//     accept replays on an already-resolved request idempotent.
//   - accept: under one transaction with row locks on both users, verifies
//     neither party already pairs (ErrConflict), flips both flags, inserts
//     symmetric accepted rows, deletes the request.
//   - reject: clears both flags, inserts symmetric rejected rows for
//     audit, deletes the request.
//   - Either way the requester is notified asynchronously and both users'
//     cached status descriptors are invalidated.
func (s *Service) RespondToRequest(ctx context.Context, requesterID, responderID uint64, action string) error {
	s.appCtx.Logger.Debug("RespondToRequest called", "requester", requesterID, "responder", responderID, "action", action)

	var (
		err     error
		message string
	)
	switch action {
	case ActionAccept:
		err = s.matches.AcceptRequest(ctx, requesterID, responderID, today())
		message = "Your match request was accepted. Let's start MOODs together!"
	case ActionReject:
		err = s.matches.RejectRequest(ctx, requesterID, responderID, today())
		message = "Your match request was rejected."
	default:
		return svcErr.InvalidArgument("action must be accept or reject")
	}
	if err != nil {
		return svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.InvalidateMatchStatus(ctx, requesterID, responderID)

	// fire-and-forget; delivery silently no-ops if the user is offline
	if s.notifier != nil {
		go s.notifier.Notify(requesterID, message)
	}

	s.appCtx.Logger.Info("exchange request resolved", "requester", requesterID, "responder", responderID, "action", action)
	return nil
}

// GetStatus returns the user's status descriptor.
// Cache-first strategy:
//  1. Attempts to read from Redis (match:status:userID).
//  2. On miss, derives the descriptor from the store: a pending request
//     wins, then the latest match record, then "no_match".
//  3. On DB fetch, updates Redis with the configured TTL.
func (s *Service) GetStatus(ctx context.Context, userID uint64) (*StatusDescriptor, error) {
	var cached StatusDescriptor
	if hit, _ := s.appCtx.RedisCache.GetMatchStatus(ctx, userID, &cached); hit {
		return &cached, nil
	}

	descriptor, err := s.statusFromStore(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.SetMatchStatus(ctx, userID, descriptor, s.appCtx.Config.Match.StatusTTL)
	return descriptor, nil
}

func (s *Service) statusFromStore(ctx context.Context, userID uint64) (*StatusDescriptor, error) {
	pending, err := s.matches.PendingRequestInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		partnerID := pending.RecipientID
		if partnerID == userID {
			partnerID = pending.RequesterID
		}
		return &StatusDescriptor{
			Status:    db.StatusPending,
			PartnerID: partnerID,
			MatchDate: pending.RequestDate.Format("2006-01-02"),
		}, nil
	}

	latest, err := s.matches.LatestRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &StatusDescriptor{Status: StatusNoMatch}, nil
	}
	return &StatusDescriptor{
		Status:    latest.Status,
		PartnerID: latest.PartnerID,
		MatchDate: latest.MatchDate.Format("2006-01-02"),
	}, nil
}

// GetPartnerDiary returns the partner's most recent diary entries.
// ErrForbidden without an accepted pairing between the two users.
func (s *Service) GetPartnerDiary(ctx context.Context, userID, partnerID uint64) ([]db.DiaryEntry, error) {
	ok, err := s.matches.HasAcceptedPair(ctx, userID, partnerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !ok {
		return nil, svcErr.ErrForbidden
	}
	entries, err := s.diaries.RecentEntries(ctx, partnerID, 5)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return entries, nil
}
