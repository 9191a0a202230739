package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/gateway"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/logic"
	"github.com/blues/giftreg/internal/model"
	"github.com/go-co-op/gocron/v2"
)

type fakeLister struct {
	records   []model.ContributionModel
	gotCutoff time.Time
	gotMethod model.PaymentMethod
	gotLimit  int
}

func (f *fakeLister) ListPendingOlderThan(ctx context.Context, method model.PaymentMethod, cutoff time.Time, limit int) ([]model.ContributionModel, error) {
	f.gotMethod, f.gotCutoff, f.gotLimit = method, cutoff, limit
	return f.records, nil
}

type fakeSearcher struct {
	SearchPaymentsFunc func(ctx context.Context, ref string) ([]gateway.Payment, error)
}

func (f *fakeSearcher) SearchPayments(ctx context.Context, ref string) ([]gateway.Payment, error) {
	return f.SearchPaymentsFunc(ctx, ref)
}

type fakeReconciler struct {
	mu    sync.Mutex
	calls map[int64]model.ContributionStatus
}

func (f *fakeReconciler) Reconcile(ctx context.Context, id int64, status model.ContributionStatus) (*logic.ReconcileResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[int64]model.ContributionStatus)
	}
	f.calls[id] = status
	return &logic.ReconcileResult{ContributionId: id, Status: status, Applied: true}, nil
}

func TestPendingSweepJob_Run(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{records: []model.ContributionModel{
		{Id: 1, CreatedAt: now.Add(-time.Hour)},      // 已支付
		{Id: 2, CreatedAt: now.Add(-time.Hour)},      // 被拒绝
		{Id: 3, CreatedAt: now.Add(-time.Hour)},      // 仍在处理
		{Id: 4, CreatedAt: now.Add(-time.Hour)},      // 没有支付，未过期
		{Id: 5, CreatedAt: now.Add(-72 * time.Hour)}, // 没有支付，已过期
		{Id: 6, CreatedAt: now.Add(-time.Hour)},      // 查询失败
	}}
	searcher := &fakeSearcher{
		SearchPaymentsFunc: func(ctx context.Context, ref string) ([]gateway.Payment, error) {
			switch ref {
			case "1":
				return []gateway.Payment{{ID: 10, Status: "rejected"}, {ID: 11, Status: "approved"}}, nil
			case "2":
				return []gateway.Payment{{ID: 20, Status: "rejected"}}, nil
			case "3":
				return []gateway.Payment{{ID: 30, Status: "in_process"}}, nil
			case "6":
				return nil, errors.New("timeout")
			}
			return nil, nil
		},
	}
	rec := &fakeReconciler{}
	cfg := config.TaskConfig{
		Interval:           time.Minute,
		PendingMinAge:      15 * time.Minute,
		PendingExpireAfter: 48 * time.Hour,
		Workers:            3,
		BatchSize:          50,
	}
	job := NewPendingSweepJob(lister, searcher, rec, cfg, logger.NewNop())
	job.now = func() time.Time { return now }

	report, err := job.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := SweepReport{Checked: 6, Updated: 2, Expired: 1, Unchanged: 2, Failed: 1}
	if report != want {
		t.Errorf("report = %s, want %s", report, want)
	}
	wantCalls := map[int64]model.ContributionStatus{
		1: model.ContributionStatusApproved,
		2: model.ContributionStatusCancelled,
		5: model.ContributionStatusCancelled,
	}
	if len(rec.calls) != len(wantCalls) {
		t.Fatalf("reconcile calls = %v", rec.calls)
	}
	for id, status := range wantCalls {
		if rec.calls[id] != status {
			t.Errorf("contribution %d reconciled to %q, want %q", id, rec.calls[id], status)
		}
	}

	if lister.gotMethod != model.PaymentMethodCard || lister.gotLimit != 50 || !lister.gotCutoff.Equal(now.Add(-15*time.Minute)) {
		t.Errorf("lister called with %s %v %d", lister.gotMethod, lister.gotCutoff, lister.gotLimit)
	}
}

func TestPendingSweepJob_NothingPending(t *testing.T) {
	searcher := &fakeSearcher{
		SearchPaymentsFunc: func(ctx context.Context, ref string) ([]gateway.Payment, error) {
			t.Error("no search expected")
			return nil, nil
		},
	}
	job := NewPendingSweepJob(&fakeLister{}, searcher, &fakeReconciler{}, config.TaskConfig{Workers: 1}, logger.NewNop())
	report, err := job.Run(context.Background())
	if err != nil || report.Checked != 0 {
		t.Errorf("Run() = %s, %v", report, err)
	}
}

type noopJob struct{}

func (noopJob) GetName() string { return "noop" }
func (noopJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Hour)
}
func (noopJob) Execute() {}

func TestManager_Register(t *testing.T) {
	m, err := NewManager(logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	job := NewPendingSweepJob(&fakeLister{}, &fakeSearcher{}, &fakeReconciler{}, config.TaskConfig{Interval: time.Hour, Workers: 1}, logger.NewNop())
	if err := m.Register(job); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(noopJob{}); err != nil {
		t.Fatal(err)
	}
	m.Start()
	defer m.Stop()

	names := m.Jobs()
	if len(names) != 2 {
		t.Errorf("jobs = %v", names)
	}
}
