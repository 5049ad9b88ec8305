package db

import (
	"time"
)

// Match / request lifecycle states.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Weather tags recorded on mood check-ins.
const (
	WeatherSunny  = "sunny"
	WeatherCloudy = "cloudy"
	WeatherRainy  = "rainy"
	WeatherSnowy  = "snowy"
	WeatherWindy  = "windy"
)

// WeatherTags lists every recognised tag, in histogram order.
var WeatherTags = []string{WeatherSunny, WeatherCloudy, WeatherRainy, WeatherSnowy, WeatherWindy}

// User table
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	// IsMatching is set while the user holds an active diary-exchange
	// pairing. At most one active pairing per user.
	IsMatching bool      `gorm:"not null;default:false;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// DiaryEntry is one dated journal entry. The matching engine only ever
// reads these: content feeds the keyword set, dates feed posting frequency.
type DiaryEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index:idx_entry_user_date,priority:1"`
	Title     string    `gorm:"size:128;not null"`
	Content   string    `gorm:"type:text;not null"`
	ImageURL  string    `gorm:"size:512"`
	IsPublic  bool      `gorm:"not null;default:false"`
	Date      time.Time `gorm:"type:date;not null;index:idx_entry_user_date,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// MoodEntry is a daily mood check-in: a 1..5 score plus a weather tag.
type MoodEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index:idx_mood_user_date,priority:1"`
	Score     int       `gorm:"not null"`
	Weather   string    `gorm:"size:16;not null"`
	Date      time.Time `gorm:"type:date;not null;index:idx_mood_user_date,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// DiaryLike marks that a user liked a public diary entry.
//
// Composite PK (EntryID, UserID): one like per user per entry, replays
// are no-ops.
type DiaryLike struct {
	EntryID   uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// MatchRecord is one direction of a pairing. An accepted pairing is stored
// as two rows, one per direction, stamped with the run's date.
//
// Indexes:
//   - idx_match_user_date(user_id, match_date DESC)
//     Optimizes "latest match for user" status lookups.
type MatchRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index:idx_match_user_date,priority:1"`
	PartnerID uint64    `gorm:"not null;index"`
	MatchDate time.Time `gorm:"type:date;not null;index:idx_match_user_date,priority:2,sort:desc"`
	Status    string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// MatchRequest is a user-initiated exchange request. Created pending,
// resolved (and deleted) by the recipient's accept/reject.
type MatchRequest struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	RequesterID uint64    `gorm:"not null;index"`
	RecipientID uint64    `gorm:"not null;index"`
	RequestDate time.Time `gorm:"type:date;not null"`
	Status      string    `gorm:"size:16;not null;default:pending"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
