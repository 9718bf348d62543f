// Package saga 实现进程内的Saga编排
//
// 核心思想：
// 1. 将一个跨资源的操作拆分为多个本地步骤（如：预留库存 → 创建支付单 → 回写发票号）
// 2. 每个步骤有对应的补偿操作
// 3. 某步失败时，按逆序执行已完成步骤的补偿操作
//
// 补偿操作必须幂等：补偿本身失败只记录日志，不会重试。
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/pkg/metrics"
)

// Step 表示Saga中的一个步骤
type Step struct {
	Name       string                          // 步骤名称（用于日志）
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作，可为空
}

// Saga 表示一次Saga执行（不可复用，不是并发安全的）
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// NewSaga 创建Saga
// timeout为整体超时时间，<=0表示不限制
//
//	s := saga.NewSaga("create_order", 30*time.Second)
//	s.AddStep("reserve_stock", reserve, release)
//	s.AddStep("create_invoice", createInvoice, nil)
//	err := s.Execute(ctx)
func NewSaga(name string, timeout time.Duration) *Saga {
	return &Saga{
		name:    name,
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

// AddStep 添加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 按顺序执行所有步骤
// 返回的错误包装了失败步骤的原始错误，可用errors.As提取
func (s *Saga) Execute(ctx context.Context) error {
	start := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(ctx)
			metrics.RecordSaga("failure", time.Since(start))
			return fmt.Errorf("saga[%s]超时: %w", s.name, err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(ctx)
				metrics.RecordSaga("failure", time.Since(start))
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	metrics.RecordSaga("success", time.Since(start))
	return nil
}

// compensate 逆序补偿
// 使用脱离取消的Context：原请求超时或取消后补偿仍要执行，同时保留trace等值
func (s *Saga) compensate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}

		metrics.RecordCompensation()
		if err := step.Compensate(ctx); err != nil {
			log.Error().Err(err).
				Str("saga", s.name).
				Str("step", step.Name).
				Msg("saga compensation failed")
		}
	}

	s.executed = nil
}
