package repository

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/moodpair/moodpair/internal/db"
	apperr "github.com/moodpair/moodpair/internal/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access for match records and exchange
// requests, including the transactional accept/reject transitions.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreatePairRecords inserts the symmetric accepted rows for one assembled
// pair from the automatic daily run, in a single transaction.
func (r *MatchRepository) CreatePairRecords(ctx context.Context, userID, partnerID uint64, matchDate time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := []db.MatchRecord{
			{UserID: userID, PartnerID: partnerID, MatchDate: matchDate, Status: db.StatusAccepted},
			{UserID: partnerID, PartnerID: userID, MatchDate: matchDate, Status: db.StatusAccepted},
		}
		return tx.Create(&records).Error
	})
}

// PendingRequestInvolving returns the pending request the user is party to,
// in either direction, or nil if there is none.
func (r *MatchRepository) PendingRequestInvolving(ctx context.Context, userID uint64) (*db.MatchRequest, error) {
	var req db.MatchRequest
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, db.StatusPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest inserts a new pending exchange request.
func (r *MatchRepository) CreateRequest(ctx context.Context, req *db.MatchRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// AcceptRequest resolves a pending request from requester to responder.
//
// All statements run in one transaction with row locks on both users:
//   - the pending request must still exist (replays get ErrNotFound)
//   - neither party may already hold an active pairing (ErrConflict)
//   - both is_matching flags flip, two accepted rows are inserted,
//     the request is deleted
func (r *MatchRepository) AcceptRequest(ctx context.Context, requesterID, responderID uint64, matchDate time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, users, err := lockPendingRequest(tx, requesterID, responderID)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.IsMatching {
				return apperr.ErrConflict
			}
		}

		if err := tx.Model(&db.User{}).
			Where("id IN ?", []uint64{requesterID, responderID}).
			Update("is_matching", true).Error; err != nil {
			return err
		}

		records := []db.MatchRecord{
			{UserID: requesterID, PartnerID: responderID, MatchDate: matchDate, Status: db.StatusAccepted},
			{UserID: responderID, PartnerID: requesterID, MatchDate: matchDate, Status: db.StatusAccepted},
		}
		if err := tx.Create(&records).Error; err != nil {
			return err
		}

		return tx.Delete(req).Error
	})
}

// RejectRequest resolves a pending request with a rejection: both flags are
// cleared, symmetric rejected rows are kept for audit and the request is
// deleted, atomically.
func (r *MatchRepository) RejectRequest(ctx context.Context, requesterID, responderID uint64, matchDate time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, _, err := lockPendingRequest(tx, requesterID, responderID)
		if err != nil {
			return err
		}

		if err := tx.Model(&db.User{}).
			Where("id IN ?", []uint64{requesterID, responderID}).
			Update("is_matching", false).Error; err != nil {
			return err
		}

		records := []db.MatchRecord{
			{UserID: requesterID, PartnerID: responderID, MatchDate: matchDate, Status: db.StatusRejected},
			{UserID: responderID, PartnerID: requesterID, MatchDate: matchDate, Status: db.StatusRejected},
		}
		if err := tx.Create(&records).Error; err != nil {
			return err
		}

		return tx.Delete(req).Error
	})
}

// lockPendingRequest loads the pending request and both participants under
// row locks inside tx.
func lockPendingRequest(tx *gorm.DB, requesterID, responderID uint64) (*db.MatchRequest, []db.User, error) {
	var req db.MatchRequest
	err := lockForUpdate(tx).
		Where("requester_id = ? AND recipient_id = ? AND status = ?", requesterID, responderID, db.StatusPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var users []db.User
	if err := lockForUpdate(tx).
		Where("id IN ?", []uint64{requesterID, responderID}).
		Find(&users).Error; err != nil {
		return nil, nil, err
	}
	if len(users) != 2 {
		return nil, nil, apperr.ErrNotFound
	}
	return &req, users, nil
}

// lockForUpdate applies SELECT ... FOR UPDATE where the dialect supports
// it. SQLite (tests) has no row locks; its single-writer transaction
// already serializes the transition.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// UserIsMatching reports whether the user currently holds an active
// pairing. ErrNotFound when no such user exists.
func (r *MatchRepository) UserIsMatching(ctx context.Context, userID uint64) (bool, error) {
	var user db.User
	err := r.db.WithContext(ctx).Select("id", "is_matching").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperr.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return user.IsMatching, nil
}

// AcceptedMatchCountSince counts the user's accepted matches dated on or
// after since. Used by the rate-limit policy check.
func (r *MatchRepository) AcceptedMatchCountSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.MatchRecord{}).
		Where("user_id = ? AND status = ? AND match_date >= ?", userID, db.StatusAccepted, since).
		Count(&count).Error
	return count, err
}

// LatestRecord returns the user's most recent match record or nil.
func (r *MatchRepository) LatestRecord(ctx context.Context, userID uint64) (*db.MatchRecord, error) {
	var record db.MatchRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("match_date DESC, id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// HasAcceptedPair reports whether an accepted pairing exists between the
// two users, in either direction.
func (r *MatchRepository) HasAcceptedPair(ctx context.Context, userID, partnerID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.MatchRecord{}).
		Where("user_id = ? AND partner_id = ? AND status = ?", userID, partnerID, db.StatusAccepted).
		Count(&count).Error
	return count > 0, err
}

// RandomEligibleRecipient picks a random user who can receive an exchange
// request: not the requester, not currently pairing and not party to any
// pending request. Returns 0 when nobody qualifies.
//
// Selection is count + random offset rather than a dialect-specific
// ORDER BY RAND(), so the same path runs on mysql and sqlite.
func (r *MatchRepository) RandomEligibleRecipient(ctx context.Context, requesterID uint64) (uint64, error) {
	eligible := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Table("users u").
			Where("u.id <> ?", requesterID).
			Where("u.is_matching = ?", false).
			Where(`
			NOT EXISTS (
				SELECT 1 FROM match_requests q
				WHERE (q.requester_id = u.id OR q.recipient_id = u.id)
				  AND q.status = ?
			)`, db.StatusPending)
	}

	var count int64
	if err := eligible().Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	var id uint64
	err := eligible().
		Select("u.id").
		Order("u.id").
		Offset(rand.Intn(int(count))).
		Limit(1).
		Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}
