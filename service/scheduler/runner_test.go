package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqguard-service/service/models"
	"dqguard-service/testutil"
)

type stubLoader struct {
	err   error
	calls int
}

func (s *stubLoader) Load(_ context.Context, desc models.DataSourceDescriptor) (*models.Dataset, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return testutil.NewTestDataset(desc.Location), nil
}

type stubValidator struct {
	score      float64
	persistErr error
	panicOnce  bool
	calls      int
}

func (s *stubValidator) ValidateDataset(_ context.Context, ds *models.Dataset) (*models.ValidationReport, error) {
	s.calls++
	if s.panicOnce {
		s.panicOnce = false
		panic("validator blew up")
	}
	report := testutil.NewTestReport(ds.Source, s.score)
	if s.persistErr != nil {
		return report, s.persistErr
	}
	return report, nil
}

type stubNotifier struct {
	reports []*models.ValidationReport
	configs []*models.AlertConfig
}

func (s *stubNotifier) Dispatch(_ context.Context, cfg *models.AlertConfig, report *models.ValidationReport) error {
	s.configs = append(s.configs, cfg)
	s.reports = append(s.reports, report)
	return nil
}

func newTestRunner(t *testing.T) (*Runner, *Registry, *stubLoader, *stubValidator, *stubNotifier, *testutil.TestDB) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	ld := &stubLoader{}
	val := &stubValidator{score: 95}
	nt := &stubNotifier{}
	return NewRunner(tdb.DB, ld, val, nt), NewRegistry(tdb.DB), ld, val, nt, tdb
}

func registerDueJob(t *testing.T, registry *Registry, tdb *testutil.TestDB, alerts *models.AlertConfig) *models.ScheduledJob {
	req := &models.ScheduleJobRequest{
		Schedule: "daily",
		DataSource: models.DataSourceDescriptor{
			Type:     models.SourceTypeFile,
			Location: "/data/users.csv",
			Format:   "csv",
		},
		Alerts: alerts,
	}
	job, err := registry.Register(req)
	require.NoError(t, err)

	// 将任务拨到已到期
	past := time.Now().Add(-time.Minute)
	require.NoError(t, tdb.DB.Model(&models.ScheduledJob{}).
		Where("job_id = ?", job.JobID).
		Update("next_execution", past).Error)
	job.NextExecution = &past
	return job
}

func TestExecuteDueJobsRunsDueJob(t *testing.T) {
	runner, registry, ld, val, _, tdb := newTestRunner(t)
	job := registerDueJob(t, registry, tdb, nil)

	require.NoError(t, runner.ExecuteDueJobs(context.Background(), time.Now()))
	assert.Equal(t, 1, ld.calls)
	assert.Equal(t, 1, val.calls)

	stored, err := registry.Get(job.JobID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastExecuted)
	require.NotNil(t, stored.NextExecution)
	assert.True(t, stored.NextExecution.After(time.Now()))
}

func TestExecuteDueJobsSkipsFutureAndInactiveJobs(t *testing.T) {
	runner, registry, ld, _, _, tdb := newTestRunner(t)

	// 未到期的任务
	_, err := registry.Register(&models.ScheduleJobRequest{
		Schedule: "daily",
		DataSource: models.DataSourceDescriptor{
			Type: models.SourceTypeFile, Location: "/data/a.csv",
		},
	})
	require.NoError(t, err)

	// 已取消的到期任务
	cancelled := registerDueJob(t, registry, tdb, nil)
	require.NoError(t, registry.Cancel(cancelled.JobID))

	require.NoError(t, runner.ExecuteDueJobs(context.Background(), time.Now()))
	assert.Equal(t, 0, ld.calls)
}

func TestExecuteDueJobsTriggersAlertBelowThreshold(t *testing.T) {
	runner, registry, _, val, nt, tdb := newTestRunner(t)
	val.score = 60

	registerDueJob(t, registry, tdb, &models.AlertConfig{
		Enabled:          true,
		Channel:          models.AlertChannelGenericWebhook,
		QualityThreshold: 80,
	})

	require.NoError(t, runner.ExecuteDueJobs(context.Background(), time.Now()))
	require.Len(t, nt.reports, 1)
	assert.Equal(t, 60.0, nt.reports[0].QualityScore)
	assert.Equal(t, 80.0, nt.configs[0].QualityThreshold)
}

func TestExecuteDueJobsLoadFailureStillAdvances(t *testing.T) {
	runner, registry, ld, val, _, tdb := newTestRunner(t)
	ld.err = errors.New("file gone")
	job := registerDueJob(t, registry, tdb, nil)

	require.NoError(t, runner.ExecuteDueJobs(context.Background(), time.Now()))
	assert.Equal(t, 0, val.calls)

	// 失败的任务同样推进执行时间，避免重试风暴
	stored, err := registry.Get(job.JobID)
	require.NoError(t, err)
	require.NotNil(t, stored.NextExecution)
	assert.True(t, stored.NextExecution.After(time.Now()))
}

func TestExecuteDueJobsIsolatesPanics(t *testing.T) {
	runner, registry, _, val, _, tdb := newTestRunner(t)
	val.panicOnce = true

	registerDueJob(t, registry, tdb, nil)
	registerDueJob(t, registry, tdb, nil)

	// 第一个任务 panic，第二个仍被执行
	require.NoError(t, runner.ExecuteDueJobs(context.Background(), time.Now()))
	assert.Equal(t, 2, val.calls)
}

func TestExecuteDueJobsToleratesPersistFailure(t *testing.T) {
	runner, registry, _, val, nt, tdb := newTestRunner(t)
	val.score = 50
	val.persistErr = errors.New("db down")

	registerDueJob(t, registry, tdb, &models.AlertConfig{
		Enabled:          true,
		Channel:          models.AlertChannelGenericWebhook,
		QualityThreshold: 80,
	})

	// 落库失败不阻断告警
	require.NoError(t, runner.ExecuteDueJobs(context.Background(), time.Now()))
	assert.Len(t, nt.reports, 1)
}

type blockingLoader struct {
	started chan struct{}
	release chan struct{}
	ctxErr  error
}

func (b *blockingLoader) Load(ctx context.Context, desc models.DataSourceDescriptor) (*models.Dataset, error) {
	close(b.started)
	<-b.release
	b.ctxErr = ctx.Err()
	return testutil.NewTestDataset(desc.Location), nil
}

func TestStopWaitsForInFlightTick(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	ld := &blockingLoader{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	val := &stubValidator{score: 95}
	runner := NewRunner(tdb.DB, ld, val, &stubNotifier{})
	runner.SetTickInterval(5 * time.Millisecond)

	registry := NewRegistry(tdb.DB)
	registerDueJob(t, registry, tdb, nil)

	runner.Start()
	<-ld.started

	// 任务执行中触发停止，放行后 Stop 等待轮次结束
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(ld.release)
	}()
	runner.Stop()

	// 停止不打断进行中的任务：任务上下文未被取消，验证流程完整跑完
	assert.NoError(t, ld.ctxErr)
	assert.Equal(t, 1, val.calls)
}

func TestRunnerStartStop(t *testing.T) {
	runner, _, _, _, _, _ := newTestRunner(t)
	runner.SetTickInterval(10 * time.Millisecond)

	runner.Start()
	runner.Start() // 幂等
	time.Sleep(30 * time.Millisecond)
	runner.Stop()
	runner.Stop() // 幂等
}
