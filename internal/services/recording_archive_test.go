package services

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/repositories"
)

type memoryRecordingRepo struct {
	created   []*models.Recording
	err       error
	lastLimit int
}

func (r *memoryRecordingRepo) Create(rec *models.Recording) error {
	if r.err != nil {
		return r.err
	}
	rec.ID = uuid.New()
	r.created = append(r.created, rec)
	return nil
}

func (r *memoryRecordingRepo) FindByID(id uuid.UUID) (*models.Recording, error) {
	for _, rec := range r.created {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, repositories.ErrRecordingNotFound
}

func (r *memoryRecordingRepo) FindByJobRole(jobRole string, limit int) ([]models.Recording, error) {
	r.lastLimit = limit
	var out []models.Recording
	for _, rec := range r.created {
		if rec.JobRole == jobRole {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func TestRecordingArchiver_StoresAndIndexes(t *testing.T) {
	store := NewLocalRecordingStore(t.TempDir())
	require.NoError(t, store.EnsureReady(context.Background()))
	repo := &memoryRecordingRepo{}
	archiver := NewRecordingArchiver(store, repo)

	rec, err := archiver.Archive(context.Background(), "answer.webm", []byte("audio"), "Chef", evaluation(4, 130, 1, 0, 0.9), "Why cooking?")
	require.NoError(t, err)
	require.Equal(t, "audio/webm", rec.ContentType)
	require.Equal(t, int64(5), rec.SizeBytes)
	require.Equal(t, StorageDriverLocal, rec.StorageDriver)
	require.Equal(t, 4, rec.Score)

	data, err := store.Load(context.Background(), rec.ObjectName)
	require.NoError(t, err)
	require.Equal(t, []byte("audio"), data)

	byRole, err := repo.FindByJobRole("Chef", 10)
	require.NoError(t, err)
	require.Len(t, byRole, 1)
}

func TestRecordingArchiver_RemovesObjectWhenIndexFails(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalRecordingStore(dir)
	archiver := NewRecordingArchiver(store, &memoryRecordingRepo{err: errors.New("db down")})

	_, err := archiver.Archive(context.Background(), "answer.webm", []byte("audio"), "Chef", evaluation(4, 130, 1, 0, 0.9), "Q")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRecordingArchiver_ReadsBack(t *testing.T) {
	store := NewLocalRecordingStore(t.TempDir())
	require.NoError(t, store.EnsureReady(context.Background()))
	repo := &memoryRecordingRepo{}
	archiver := NewRecordingArchiver(store, repo)

	rec, err := archiver.Archive(context.Background(), "answer.ogg", []byte("ogg-audio"), "Chef", evaluation(5, 130, 1, 0, 0.9), "Why cooking?")
	require.NoError(t, err)

	found, err := archiver.Find(rec.ID)
	require.NoError(t, err)
	require.Equal(t, "Why cooking?", found.Question)

	meta, data, err := archiver.Audio(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, "audio/ogg", meta.ContentType)
	require.Equal(t, []byte("ogg-audio"), data)

	list, err := archiver.List(" Chef ", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, defaultRecordingListLimit, repo.lastLimit)

	_, err = archiver.List("  ", 5)
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = archiver.Audio(context.Background(), uuid.New())
	require.ErrorIs(t, err, repositories.ErrRecordingNotFound)
}
