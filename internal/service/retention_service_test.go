package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRetentionFixture() (IRetentionService, *mockUnitOfWork) {
	uow := newMockUnitOfWork()
	svc := NewRetentionService(&mockFactory{uow: uow}, noopLogger{})
	return svc, uow
}

func TestRetentionRejectsNonPositiveDays(t *testing.T) {
	svc, uow := newRetentionFixture()
	ctx := context.Background()

	for _, days := range []int{0, -1, -30} {
		_, err := svc.CleanupOldHistory(ctx, days, nil)
		assert.ErrorIs(t, err, ErrValidation)
	}
	uow.history.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetentionCutoffIsDaysAgo(t *testing.T) {
	svc, uow := newRetentionFixture()
	ctx := context.Background()

	var gotCutoff time.Time
	uow.history.On("DeleteOlderThan", mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Run(func(args mock.Arguments) {
			gotCutoff = args.Get(1).(time.Time)
		}).Return(int64(12), nil)

	deleted, err := svc.CleanupOldHistory(ctx, 30, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), deleted)

	want := time.Now().AddDate(0, 0, -30)
	assert.WithinDuration(t, want, gotCutoff, time.Minute)
}

func TestRetentionOwnerScoped(t *testing.T) {
	svc, uow := newRetentionFixture()
	ctx := context.Background()
	userId := uuid.New()

	uow.history.On("DeleteOlderThan", mock.Anything, mock.Anything, &userId).Return(int64(3), nil)

	deleted, err := svc.CleanupOldHistory(ctx, 7, &userId)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	uow.history.AssertCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything, &userId)
}

func TestRetentionRejectsNilOwnerPointer(t *testing.T) {
	svc, uow := newRetentionFixture()

	nilId := uuid.Nil
	_, err := svc.CleanupOldHistory(context.Background(), 7, &nilId)

	assert.ErrorIs(t, err, ErrValidation)
	uow.history.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetentionZeroDeletedIsNotAnError(t *testing.T) {
	svc, uow := newRetentionFixture()

	uow.history.On("DeleteOlderThan", mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return(int64(0), nil)

	deleted, err := svc.CleanupOldHistory(context.Background(), 90, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
