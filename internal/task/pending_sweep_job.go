package task

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/gateway"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/logic"
	"github.com/blues/giftreg/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
)

// PendingLister 待确认贡献查询
type PendingLister interface {
	ListPendingOlderThan(ctx context.Context, method model.PaymentMethod, cutoff time.Time, limit int) ([]model.ContributionModel, error)
}

// PaymentSearcher 按 external_reference 搜索支付
type PaymentSearcher interface {
	SearchPayments(ctx context.Context, externalReference string) ([]gateway.Payment, error)
}

// Reconciler 状态对账
type Reconciler interface {
	Reconcile(ctx context.Context, contributionId int64, status model.ContributionStatus) (*logic.ReconcileResult, error)
}

// SweepReport 一轮扫描的结果
type SweepReport struct {
	Checked   int
	Updated   int
	Expired   int
	Unchanged int
	Failed    int
}

func (r SweepReport) String() string {
	return fmt.Sprintf("checked=%d updated=%d expired=%d unchanged=%d failed=%d",
		r.Checked, r.Updated, r.Expired, r.Unchanged, r.Failed)
}

// PendingSweepJob 补偿丢失的 webhook：主动查询长时间待确认的信用卡贡献
type PendingSweepJob struct {
	contributions PendingLister
	payments      PaymentSearcher
	reconciler    Reconciler
	cfg           config.TaskConfig
	log           *logger.Logger
	now           func() time.Time
}

// NewPendingSweepJob 创建待确认贡献扫描任务
func NewPendingSweepJob(contributions PendingLister, payments PaymentSearcher, reconciler Reconciler, cfg config.TaskConfig, log *logger.Logger) *PendingSweepJob {
	return &PendingSweepJob{
		contributions: contributions,
		payments:      payments,
		reconciler:    reconciler,
		cfg:           cfg,
		log:           log.Named("pending_sweep"),
		now:           time.Now,
	}
}

// GetName 获取任务名称
func (j *PendingSweepJob) GetName() string {
	return "pending_contribution_sweeper"
}

// GetSchedule 获取调度配置
func (j *PendingSweepJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.cfg.Interval)
}

// Execute 执行任务
func (j *PendingSweepJob) Execute() {
	report, err := j.Run(context.Background())
	if err != nil {
		j.log.Error("Pending sweep failed: %v", err)
		return
	}
	if report.Checked > 0 {
		j.log.Info("Pending sweep finished: %s", report)
	}
}

type sweepResult int

const (
	sweepUnchanged sweepResult = iota
	sweepUpdated
	sweepExpired
	sweepFailed
)

// Run 扫描一批待确认贡献
func (j *PendingSweepJob) Run(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	now := j.now()

	records, err := j.contributions.ListPendingOlderThan(ctx, model.PaymentMethodCard, now.Add(-j.cfg.PendingMinAge), j.cfg.BatchSize)
	if err != nil {
		return report, err
	}
	if len(records) == 0 {
		return report, nil
	}
	report.Checked = len(records)

	workers := j.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return report, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg                                  sync.WaitGroup
		updated, expired, unchanged, failed int64
	)
	for i := range records {
		record := records[i]
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			switch j.sweepOne(ctx, &record, now) {
			case sweepUpdated:
				atomic.AddInt64(&updated, 1)
			case sweepExpired:
				atomic.AddInt64(&expired, 1)
			case sweepFailed:
				atomic.AddInt64(&failed, 1)
			default:
				atomic.AddInt64(&unchanged, 1)
			}
		})
		if err != nil {
			wg.Done()
			atomic.AddInt64(&failed, 1)
			j.log.Error("Failed to submit contribution %d to pool: %v", record.Id, err)
		}
	}
	wg.Wait()

	report.Updated = int(updated)
	report.Expired = int(expired)
	report.Unchanged = int(unchanged)
	report.Failed = int(failed)
	return report, nil
}

func (j *PendingSweepJob) sweepOne(ctx context.Context, record *model.ContributionModel, now time.Time) sweepResult {
	payments, err := j.payments.SearchPayments(ctx, strconv.FormatInt(record.Id, 10))
	if err != nil {
		j.log.Warn("Payment search for contribution %d failed: %v", record.Id, err)
		return sweepFailed
	}

	if payment, ok := gateway.SelectPayment(payments); ok {
		status, mapped := gateway.MapStatus(payment.Status)
		if !mapped {
			j.log.Warn("Unmapped provider status %q for contribution %d", payment.Status, record.Id)
			return sweepUnchanged
		}
		if status == model.ContributionStatusPending {
			return sweepUnchanged
		}
		return j.reconcile(ctx, record.Id, status, sweepUpdated)
	}

	if j.cfg.PendingExpireAfter > 0 && now.Sub(record.CreatedAt) > j.cfg.PendingExpireAfter {
		j.log.Info("Contribution %d has no payment after %s, cancelling", record.Id, j.cfg.PendingExpireAfter)
		return j.reconcile(ctx, record.Id, model.ContributionStatusCancelled, sweepExpired)
	}
	return sweepUnchanged
}

func (j *PendingSweepJob) reconcile(ctx context.Context, id int64, status model.ContributionStatus, onApplied sweepResult) sweepResult {
	result, err := j.reconciler.Reconcile(ctx, id, status)
	if err != nil {
		j.log.Error("Reconcile contribution %d to %s failed: %v", id, status, err)
		return sweepFailed
	}
	if !result.Applied {
		return sweepUnchanged
	}
	return onApplied
}
