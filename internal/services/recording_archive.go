package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/repositories"
)

const defaultRecordingListLimit = 20

// RecordingArchiver stores analysed answer audio and indexes it in the database.
type RecordingArchiver interface {
	Archive(ctx context.Context, filename string, audio []byte, jobRole string, evaluation models.AnswerEvaluation, question string) (*models.Recording, error)
	Find(id uuid.UUID) (*models.Recording, error)
	// List returns the newest recordings for a job role. A non-positive limit uses the default.
	List(jobRole string, limit int) ([]models.Recording, error)
	// Audio loads the stored bytes of a recording together with its metadata.
	Audio(ctx context.Context, id uuid.UUID) (*models.Recording, []byte, error)
}

type recordingArchiver struct {
	store RecordingStore
	repo  repositories.RecordingRepository
}

func NewRecordingArchiver(store RecordingStore, repo repositories.RecordingRepository) RecordingArchiver {
	return &recordingArchiver{store: store, repo: repo}
}

// Archive implements RecordingArchiver.
func (a *recordingArchiver) Archive(ctx context.Context, filename string, audio []byte, jobRole string, evaluation models.AnswerEvaluation, question string) (*models.Recording, error) {
	_, contentType, err := AudioExtension(filename)
	if err != nil {
		return nil, err
	}

	objectName, err := a.store.Save(ctx, filename, audio)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store recording")
	}

	rec := &models.Recording{
		ObjectName:       objectName,
		OriginalFileName: filename,
		ContentType:      contentType,
		SizeBytes:        int64(len(audio)),
		StorageDriver:    a.store.Driver(),
		JobRole:          jobRole,
		Question:         question,
		Score:            evaluation.Score,
	}
	if err := a.repo.Create(rec); err != nil {
		if delErr := a.store.Delete(ctx, objectName); delErr != nil {
			log.WithError(delErr).WithField("object", objectName).Warn("⚠️ Failed to clean up orphaned recording")
		}
		return nil, errors.Wrap(err, "failed to index recording")
	}

	log.WithFields(log.Fields{
		"object": objectName,
		"driver": a.store.Driver(),
	}).Info("💾 Recording archived")
	return rec, nil
}

// Find implements RecordingArchiver.
func (a *recordingArchiver) Find(id uuid.UUID) (*models.Recording, error) {
	return a.repo.FindByID(id)
}

// List implements RecordingArchiver.
func (a *recordingArchiver) List(jobRole string, limit int) ([]models.Recording, error) {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" {
		return nil, errors.Wrap(ErrValidation, "job role is required")
	}
	if limit <= 0 {
		limit = defaultRecordingListLimit
	}
	return a.repo.FindByJobRole(jobRole, limit)
}

// Audio implements RecordingArchiver.
func (a *recordingArchiver) Audio(ctx context.Context, id uuid.UUID) (*models.Recording, []byte, error) {
	rec, err := a.repo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}

	data, err := a.store.Load(ctx, rec.ObjectName)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load recording")
	}
	return rec, data, nil
}
