package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Egor213/LogiStream/internal/activity"
	"github.com/Egor213/LogiStream/internal/domain"
	activitymocks "github.com/Egor213/LogiStream/internal/mocks/activity"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCached_Activities(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	src := activitymocks.NewMockSource(ctrl)
	src.EXPECT().Activities(ctx).Return([]string{"Coding"}, nil).Times(1)

	c := activity.NewCached(src, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := c.Activities(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Coding"}, got)
	}
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	src := activitymocks.NewMockSource(ctrl)
	current := &domain.Activity{ID: "p1", Name: "Sleep"}
	gomock.InOrder(
		src.EXPECT().CurrentActivity(ctx).Return(nil, errors.New("timeout")),
		src.EXPECT().CurrentActivity(ctx).Return(current, nil),
	)

	c := activity.NewCached(src, time.Minute)

	_, err := c.CurrentActivity(ctx)
	assert.Error(t, err)

	got, err := c.CurrentActivity(ctx)
	assert.NoError(t, err)
	assert.Equal(t, current, got)

	got, err = c.CurrentActivity(ctx)
	assert.NoError(t, err)
	assert.Equal(t, current, got)
}

func TestCached_Invalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	src := activitymocks.NewMockSource(ctrl)
	src.EXPECT().Activities(ctx).Return([]string{"A"}, nil).Times(2)

	c := activity.NewCached(src, time.Minute)
	_, _ = c.Activities(ctx)
	c.Invalidate()
	_, _ = c.Activities(ctx)
}
