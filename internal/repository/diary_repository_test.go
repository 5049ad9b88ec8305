package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/moodpair/moodpair/internal/db"
	"github.com/moodpair/moodpair/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiaryEntryCRUD(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewDiaryRepository(database)

	entry := &db.DiaryEntry{
		UserID:  1,
		Title:   "morning run",
		Content: "went for a run before the olympic coverage",
		Date:    matchDay(),
	}
	require.NoError(t, repo.CreateEntry(ctx, entry))
	require.NotZero(t, entry.ID)

	// owner can read it
	got, err := repo.GetEntry(ctx, entry.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, "morning run", got.Title)

	// someone else cannot
	_, err = repo.GetEntry(ctx, entry.ID, 2)
	assert.True(t, repository.IsNotFound(err))

	entry.Title = "evening run"
	entry.IsPublic = true
	require.NoError(t, repo.UpdateEntry(ctx, entry))

	got, err = repo.GetEntry(ctx, entry.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, "evening run", got.Title)
	assert.True(t, got.IsPublic)

	require.NoError(t, repo.DeleteEntry(ctx, entry.ID, 1))
	_, err = repo.GetEntry(ctx, entry.ID, 1)
	assert.True(t, repository.IsNotFound(err))
}

func TestUpdateEntryWrongOwner(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewDiaryRepository(database)

	entry := &db.DiaryEntry{UserID: 1, Title: "t", Content: "c", Date: matchDay()}
	require.NoError(t, repo.CreateEntry(ctx, entry))

	stolen := *entry
	stolen.UserID = 2
	err := repo.UpdateEntry(ctx, &stolen)
	assert.True(t, repository.IsNotFound(err))

	err = repo.DeleteEntry(ctx, entry.ID, 2)
	assert.True(t, repository.IsNotFound(err))
}

func TestListEntriesPagination(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewDiaryRepository(database)

	day := matchDay()
	for i := 0; i < 5; i++ {
		entry := &db.DiaryEntry{
			UserID:  1,
			Title:   fmt.Sprintf("entry %d", i),
			Content: "c",
			Date:    day.AddDate(0, 0, -i),
		}
		require.NoError(t, repo.CreateEntry(ctx, entry))
	}

	// first page, newest first
	page1, next, err := repo.ListEntries(ctx, 1, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "entry 0", page1[0].Title)
	assert.Equal(t, "entry 1", page1[1].Title)

	page2, next, err := repo.ListEntries(ctx, 1, next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, next)
	assert.Equal(t, "entry 2", page2[0].Title)

	page3, next, err := repo.ListEntries(ctx, 1, next, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "entry 4", page3[0].Title)
	assert.Nil(t, next)
}

func TestListEntriesBadToken(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewDiaryRepository(database)

	bad := "not-a-token"
	_, _, err := repo.ListEntries(ctx, 1, &bad, 10)
	assert.Error(t, err)
}

func TestLikeEntryIdempotent(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewDiaryRepository(database)

	entry := &db.DiaryEntry{UserID: 1, Title: "t", Content: "c", IsPublic: true, Date: matchDay()}
	require.NoError(t, repo.CreateEntry(ctx, entry))

	require.NoError(t, repo.LikeEntry(ctx, entry.ID, 2))
	// replay keeps a single row
	require.NoError(t, repo.LikeEntry(ctx, entry.ID, 2))

	var count int64
	require.NoError(t, database.Model(&db.DiaryLike{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.UnlikeEntry(ctx, entry.ID, 2))
	require.NoError(t, database.Model(&db.DiaryLike{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCountLikesReceived(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewDiaryRepository(database)

	day := matchDay()
	entry := &db.DiaryEntry{UserID: 1, Title: "t", Content: "c", IsPublic: true, Date: day}
	require.NoError(t, repo.CreateEntry(ctx, entry))

	require.NoError(t, repo.LikeEntry(ctx, entry.ID, 2))
	require.NoError(t, repo.LikeEntry(ctx, entry.ID, 3))

	count, err := repo.CountLikesReceived(ctx, 1, day.AddDate(0, 0, -30))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
