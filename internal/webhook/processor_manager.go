package webhook

import (
	"context"
	"sort"
	"sync"

	"github.com/blues/giftreg/internal/logger"
)

// Outcome 通知处理结果
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeIgnored   Outcome = "ignored"
)

// TopicProcessor 主题处理器接口
type TopicProcessor interface {
	Process(ctx context.Context, n Notification) (Outcome, error)
	GetTopic() string
}

// ProcessorManager 主题处理器管理器
type ProcessorManager struct {
	mu         sync.RWMutex
	processors map[string]TopicProcessor
	log        *logger.Logger
}

// NewProcessorManager 创建处理器管理器
func NewProcessorManager(log *logger.Logger, processors ...TopicProcessor) *ProcessorManager {
	manager := &ProcessorManager{
		processors: make(map[string]TopicProcessor),
		log:        log,
	}
	for _, p := range processors {
		manager.RegisterProcessor(p)
	}
	return manager
}

// RegisterProcessor 注册主题处理器
func (pm *ProcessorManager) RegisterProcessor(processor TopicProcessor) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	topic := processor.GetTopic()
	pm.processors[topic] = processor
	pm.log.Debug("Registered webhook processor for topic: %s", topic)
}

// GetProcessor 获取指定主题的处理器
func (pm *ProcessorManager) GetProcessor(topic string) (TopicProcessor, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	processor, exists := pm.processors[topic]
	return processor, exists
}

// Process 分发通知，未知主题直接忽略
func (pm *ProcessorManager) Process(ctx context.Context, n Notification) (Outcome, error) {
	processor, exists := pm.GetProcessor(n.Topic)
	if !exists {
		pm.log.Warn("No processor found for topic: %s", n.Topic)
		return OutcomeIgnored, nil
	}
	return processor.Process(ctx, n)
}

// GetSupportedTopics 获取支持的主题列表
func (pm *ProcessorManager) GetSupportedTopics() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	topics := make([]string, 0, len(pm.processors))
	for topic := range pm.processors {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}
