package webhook

import (
	"context"
	"strings"
	"time"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/retry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway webhook 需要的网关查询
type Gateway interface {
	PaymentLookup
	OrderLookup
}

// Processor webhook 入口：验签、解析、分发、重试
type Processor struct {
	verifier *Verifier
	manager  *ProcessorManager
	policy   retry.Policy
	log      *logger.Logger
}

// NewProcessor 创建 webhook 处理入口，注册 payment 与 merchant_order 处理器
func NewProcessor(cfg config.WebhookConfig, gw Gateway, contributions ContributionFinder, reconciler Reconciler, log *logger.Logger) *Processor {
	log = log.Named("webhook")
	manager := NewProcessorManager(log,
		NewPaymentProcessor(gw, contributions, reconciler, log),
		NewMerchantOrderProcessor(gw, gw, contributions, reconciler, log),
	)
	return NewProcessorWithManager(NewVerifier(cfg.Secret, log), manager, cfg, log)
}

// NewProcessorWithManager 使用自定义处理器管理器创建入口
func NewProcessorWithManager(verifier *Verifier, manager *ProcessorManager, cfg config.WebhookConfig, log *logger.Logger) *Processor {
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	p := &Processor{
		verifier: verifier,
		manager:  manager,
		policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     retry.Linear(delay),
			Retryable:   func(err error) bool { return !apperr.IsPermanent(err) },
		},
		log: log,
	}
	log.Info("Webhook processor ready for topics: %s", strings.Join(p.Topics(), ", "))
	return p
}

// Topics 已注册的通知主题
func (p *Processor) Topics() []string {
	return p.manager.GetSupportedTopics()
}

// Handle 处理一次通知。签名错误返回 AuthenticationError；无法识别或不属于本系统的通知返回 OutcomeIgnored；
// 重试耗尽后返回错误，由网关重新投递。
func (p *Processor) Handle(ctx context.Context, body []byte, signature string) (Outcome, error) {
	log := p.log.With(zap.String("delivery_id", uuid.NewString()))

	if err := p.verifier.Verify(body, signature, peekTopic(body)); err != nil {
		log.Warn("Rejected webhook: %v", err)
		return "", err
	}

	n, err := ParseNotification(body)
	if err != nil {
		log.Info("Ignoring webhook without topic or resource id")
		return OutcomeIgnored, nil
	}

	policy := p.policy
	policy.OnRetry = func(attempt int, err error) {
		log.Warn("Webhook %s %s attempt %d failed: %v", n.Topic, n.ResourceID, attempt, err)
	}
	outcome, err := retry.DoValue(ctx, policy, func(ctx context.Context, attempt int) (Outcome, error) {
		return p.manager.Process(ctx, n)
	})
	if err != nil {
		if apperr.IsValidation(err) || apperr.IsNotFound(err) {
			log.Info("Ignoring webhook %s %s: %v", n.Topic, n.ResourceID, err)
			return OutcomeIgnored, nil
		}
		log.Error("Webhook %s %s failed: %v", n.Topic, n.ResourceID, err)
		return "", err
	}

	log.Info("Webhook %s %s %s", n.Topic, n.ResourceID, outcome)
	return outcome, nil
}
