/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2026-01-18 19:58:40
 * @LastEditors: 安知鱼
 */
package task

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 封装了 cron 实例和其依赖。
// 它是整个定时任务模块的核心协调者，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	jobs   []scheduledJob
}

type scheduledJob struct {
	spec string
	job  Job
}

// NewScheduler 是 Scheduler 的构造函数。
func NewScheduler(logger *zap.Logger) *Scheduler {
	logger = logger.With(zap.String("system", "cron"))

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			// DelayIfStillRunning 放在最外层，内层装饰器才能拿到任务名
			cron.DelayIfStillRunning(cron.DiscardLogger),
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
		),
	)

	return &Scheduler{
		cron:   c,
		logger: logger,
	}
}

// Add 登记一个定时任务，spec 为带秒的 cron 表达式
func (s *Scheduler) Add(spec string, job Job) {
	s.jobs = append(s.jobs, scheduledJob{spec: spec, job: job})
}

// RegisterJobs 在调度器中注册所有登记过的定时任务。
func (s *Scheduler) RegisterJobs() error {
	s.logger.Info("Registering all periodic jobs...")
	for _, j := range s.jobs {
		if _, err := s.cron.AddJob(j.spec, j.job); err != nil {
			return fmt.Errorf("注册定时任务 '%s' 失败: %w", j.job.Name(), err)
		}
		s.logger.Info("-> Successfully registered job",
			zap.String("job_name", j.job.Name()), zap.String("schedule", j.spec))
	}
	s.logger.Info("All periodic jobs registered.", zap.Int("count", len(s.jobs)))
	return nil
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器，会等待正在执行的任务结束。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
