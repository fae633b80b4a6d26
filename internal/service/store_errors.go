package service

import (
	"context"
	"errors"

	"github.com/noah-isme/wellness-api/internal/kv"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

// storeError converts repository and substrate failures into API errors.
func storeError(err error, action string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrCorruptCollection):
		return appErrors.Wrap(err, appErrors.ErrCorruptCollection.Code, appErrors.ErrCorruptCollection.Status, appErrors.ErrCorruptCollection.Message)
	case errors.Is(err, kv.ErrUnavailable):
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, appErrors.ErrStorageUnavailable.Message)
	case errors.Is(err, repository.ErrActivePlanExists):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, err.Error())
	case errors.Is(err, repository.ErrInvalidPatch):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action)
	}
}

func validationError(err error, payload string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+payload+" payload")
}

// recordStore is the slice of repository.Collection the services depend on.
type recordStore[T any] interface {
	List(ctx context.Context, key string) ([]T, error)
	Get(ctx context.Context, id string) (T, bool, error)
	Add(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, patch models.Patch) (T, bool, error)
}

func findRecord[T any](ctx context.Context, store recordStore[T], id, what string) (T, error) {
	rec, found, err := store.Get(ctx, id)
	if err != nil {
		return rec, storeError(err, "load "+what)
	}
	if !found {
		return rec, appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return rec, nil
}

func updateRecord[T any](ctx context.Context, store recordStore[T], id string, patch models.Patch, what string) (T, error) {
	rec, found, err := store.Update(ctx, id, patch)
	if err != nil {
		return rec, storeError(err, "update "+what)
	}
	if !found {
		return rec, appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return rec, nil
}

func ensureStudentAccess(actor models.Actor, studentID string) error {
	if !actor.CanAccessStudent(studentID) {
		return appErrors.Clone(appErrors.ErrForbidden, "records of another student")
	}
	return nil
}

func invalidTransition(what string, from, to string) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, what+" cannot move from "+from+" to "+to)
}
