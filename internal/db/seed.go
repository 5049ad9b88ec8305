package db

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// themes give seeded users overlapping vocabularies so the keyword
// similarity has something to chew on.
var themes = [][]string{
	{"hiking", "mountain", "trail", "sunrise", "forest"},
	{"coffee", "reading", "novel", "library", "rainy"},
	{"running", "marathon", "training", "stretching", "recovery"},
	{"cooking", "recipe", "dinner", "baking", "kitchen"},
	{"olympic", "games", "sports", "swimming", "medal"},
	{"painting", "sketch", "gallery", "colors", "canvas"},
}

// SeedTestData resets the database and populates it with demo users,
// diary entries, mood check-ins and likes.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates 12 users with hashed passwords.
//  3. Each user writes themed diary entries spread over the past month,
//     records daily moods, and likes a handful of other users' entries.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := truncateAll(db); err != nil {
		return err
	}
	log.Println("Cleared existing data")

	today := time.Now().UTC().Truncate(24 * time.Hour)

	// --- Users ---
	for i := 1; i <= 12; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user := User{
			Name:         fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 12 users.")

	// --- Diary entries + moods ---
	for userID := uint64(1); userID <= 12; userID++ {
		theme := themes[int(userID)%len(themes)]
		entryCount := 5 + r.Intn(10)
		for j := 0; j < entryCount; j++ {
			day := today.AddDate(0, 0, -r.Intn(28))
			words := make([]string, 0, 8)
			for k := 0; k < 5; k++ {
				words = append(words, theme[r.Intn(len(theme))])
			}
			entry := DiaryEntry{
				UserID:   userID,
				Title:    fmt.Sprintf("Day %d", j+1),
				Content:  "today about " + strings.Join(words, " "),
				IsPublic: r.Intn(100) < 60,
				Date:     day,
			}
			if err := db.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to seed diary entry: %w", err)
			}
		}

		for d := 0; d < 20; d++ {
			mood := MoodEntry{
				UserID:  userID,
				Score:   1 + r.Intn(5),
				Weather: WeatherTags[r.Intn(len(WeatherTags))],
				Date:    today.AddDate(0, 0, -d),
			}
			if err := db.Create(&mood).Error; err != nil {
				return fmt.Errorf("failed to seed mood entry: %w", err)
			}
		}
	}
	log.Println("Seeded diary and mood entries.")

	// --- Likes on public entries ---
	var publicEntries []DiaryEntry
	if err := db.Where("is_public = ?", true).Find(&publicEntries).Error; err != nil {
		return err
	}
	for _, entry := range publicEntries {
		likers := r.Intn(4)
		for l := 0; l < likers; l++ {
			likerID := uint64(r.Intn(12) + 1)
			if likerID == entry.UserID {
				continue
			}
			like := DiaryLike{EntryID: entry.ID, UserID: likerID}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
		}
	}
	log.Println("Seeded likes.")

	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic
// dataset for repeatable tests: three users, two of them with overlapping
// diary vocabulary and identical mood history.
func SeedMinimalTestData(db *gorm.DB) error {
	if err := truncateAll(db); err != nil {
		return err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	users := []User{
		{ID: 1, Name: "user1", Email: "u1@test.com", PasswordHash: "x"},
		{ID: 2, Name: "user2", Email: "u2@test.com", PasswordHash: "x"},
		{ID: 3, Name: "user3", Email: "u3@test.com", PasswordHash: "x"},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	entries := []DiaryEntry{
		{UserID: 1, Title: "one", Content: "watching olympic games tonight", IsPublic: true, Date: today.AddDate(0, 0, -2)},
		{UserID: 1, Title: "two", Content: "more olympic coverage", IsPublic: true, Date: today.AddDate(0, 0, -1)},
		{UserID: 2, Title: "one", Content: "olympic sports highlights", IsPublic: true, Date: today.AddDate(0, 0, -2)},
		{UserID: 2, Title: "two", Content: "great sports weekend", IsPublic: true, Date: today.AddDate(0, 0, -1)},
		{UserID: 3, Title: "one", Content: "quiet reading evening", IsPublic: false, Date: today.AddDate(0, 0, -3)},
	}
	if err := db.Create(&entries).Error; err != nil {
		return err
	}

	moods := []MoodEntry{
		{UserID: 1, Score: 5, Weather: WeatherSunny, Date: today.AddDate(0, 0, -2)},
		{UserID: 1, Score: 5, Weather: WeatherSunny, Date: today.AddDate(0, 0, -1)},
		{UserID: 2, Score: 5, Weather: WeatherSunny, Date: today.AddDate(0, 0, -2)},
		{UserID: 2, Score: 5, Weather: WeatherSunny, Date: today.AddDate(0, 0, -1)},
		{UserID: 3, Score: 2, Weather: WeatherRainy, Date: today.AddDate(0, 0, -3)},
	}
	if err := db.Create(&moods).Error; err != nil {
		return err
	}

	return nil
}

func truncateAll(db *gorm.DB) error {
	tables := []string{
		"match_requests", "match_records", "diary_likes",
		"mood_entries", "diary_entries", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences so seeded IDs start at 1.
	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range tables {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		for _, table := range tables {
			db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
		}
	}
	return nil
}
