package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smokebuddy/internal/types"
)

// --- Fakes ---

type memRepo struct {
	rec     *types.CounterRecord
	loadErr error
	saveErr error
	saves   []types.CounterRecord
}

func (m *memRepo) Load(_ context.Context, defaultDate string) (*types.CounterRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.rec == nil {
		m.rec = types.NewCounterRecord(defaultDate)
	}
	c := *m.rec
	return &c, nil
}

func (m *memRepo) Save(_ context.Context, rec *types.CounterRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	c := *rec
	m.rec = &c
	m.saves = append(m.saves, c)
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(repo *memRepo, now time.Time) *Service {
	return NewService(ServiceConfig{
		Repo:     repo,
		Catalog:  testCatalog(3),
		Location: time.FixedZone("CST", 8*60*60),
		Clock:    fixedClock{now: now},
	})
}

// 2026-02-06 23:30 in Taipei is 15:30 UTC.
var taipeiLateEvening = time.Date(2026, 2, 6, 15, 30, 0, 0, time.UTC)

// --- Tests ---

func TestService_CurrentDate_UsesLocation(t *testing.T) {
	svc := newTestService(&memRepo{}, time.Date(2026, 2, 6, 17, 0, 0, 0, time.UTC))

	// 17:00 UTC is already 01:00 the next day in Taipei.
	assert.Equal(t, "2026-02-07", svc.CurrentDate())
}

func TestService_Current_CreatesDefault(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, taipeiLateEvening)

	rec, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.CounterRecord{Date: "2026-02-06"}, *rec)
	assert.Empty(t, repo.saves, "an unchanged record is not re-saved")
}

func TestService_Current_PersistsLazyRollover(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-05", Today: 6, Yesterday: 2, Streak: 1}}
	svc := newTestService(repo, taipeiLateEvening)

	rec, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.CounterRecord{Date: "2026-02-06", Today: 0, Yesterday: 6, Streak: 1}, *rec)
	require.Len(t, repo.saves, 1)
	assert.Equal(t, *rec, repo.saves[0])
}

func TestService_AdjustCount(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-06", Today: 2, Yesterday: 5}}
	svc := newTestService(repo, taipeiLateEvening)

	rec, err := svc.AdjustCount(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Today)

	rec, err = svc.AdjustCount(context.Background(), -10)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Today)
	assert.Equal(t, 5, repo.rec.Yesterday)
}

func TestService_AdjustCount_RollsOverFirst(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-05", Today: 8}}
	svc := newTestService(repo, taipeiLateEvening)

	rec, err := svc.AdjustCount(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, types.CounterRecord{Date: "2026-02-06", Today: 1, Yesterday: 8}, *rec)
}

func TestService_ResetToday(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-06", Today: 11, Yesterday: 7, Streak: 3}}
	svc := newTestService(repo, taipeiLateEvening)

	rec, err := svc.ResetToday(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.CounterRecord{Date: "2026-02-06", Today: 0, Yesterday: 7, Streak: 3}, *rec)
}

func TestService_Rollover_NoopAfterLazyRollover(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-05", Today: 4}}
	svc := newTestService(repo, taipeiLateEvening)

	_, err := svc.Current(context.Background())
	require.NoError(t, err)

	rec, rolled, err := svc.Rollover(context.Background())
	require.NoError(t, err)

	assert.False(t, rolled)
	assert.Equal(t, types.CounterRecord{Date: "2026-02-06", Today: 0, Yesterday: 4}, *rec)
	assert.Len(t, repo.saves, 1)
}

func TestService_Rollover_Applies(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-05", Today: 4, Yesterday: 1, Streak: 2}}
	svc := newTestService(repo, taipeiLateEvening)

	rec, rolled, err := svc.Rollover(context.Background())
	require.NoError(t, err)

	assert.True(t, rolled)
	assert.Equal(t, types.CounterRecord{Date: "2026-02-06", Today: 0, Yesterday: 4, Streak: 2}, *rec)
}

func TestService_EvaluateDay_Reward(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-06", Today: 3, Yesterday: 5, Streak: 2}}
	svc := newTestService(repo, taipeiLateEvening)

	rec, reward, err := svc.EvaluateDay(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, rec.Streak)
	require.NotNil(t, reward)
	assert.Equal(t, svc.catalog[2], *reward)
	assert.Equal(t, 3, repo.rec.Streak)
}

func TestService_EvaluateDay_RepeatedSameDay(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-06", Today: 3, Yesterday: 5, Streak: 2}}
	svc := newTestService(repo, taipeiLateEvening)

	_, first, err := svc.EvaluateDay(context.Background())
	require.NoError(t, err)

	for range 2 {
		rec, reward, err := svc.EvaluateDay(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, rec.Streak)
		assert.Equal(t, first, reward)
	}
	assert.Equal(t, 3, repo.rec.Streak)
}

func TestService_EvaluateDay_NoReward(t *testing.T) {
	repo := &memRepo{rec: &types.CounterRecord{Date: "2026-02-06", Today: 5, Yesterday: 5, Streak: 2}}
	svc := newTestService(repo, taipeiLateEvening)

	rec, reward, err := svc.EvaluateDay(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Streak)
	assert.Nil(t, reward)
}

func TestService_StorageErrorsSurface(t *testing.T) {
	storageErr := types.NewStorageError("disk gone", errors.New("EIO"))

	loadFail := newTestService(&memRepo{loadErr: storageErr}, taipeiLateEvening)
	_, err := loadFail.AdjustCount(context.Background(), 1)
	assert.True(t, types.IsStorageError(err))

	saveFail := newTestService(&memRepo{saveErr: storageErr}, taipeiLateEvening)
	_, err = saveFail.AdjustCount(context.Background(), 1)
	assert.True(t, types.IsStorageError(err))

	_, _, err = saveFail.EvaluateDay(context.Background())
	// Default record has 0/0, so EvaluateDay leaves streak at 0 and nothing is saved.
	assert.NoError(t, err)
}
