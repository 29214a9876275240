/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-10 15:23:10
 * @LastEditTime: 2026-01-18 20:03:17
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AbandonedUploadCleaner 由上传服务实现
type AbandonedUploadCleaner interface {
	CleanupAbandonedUploads(ctx context.Context, olderThan time.Duration) (int, error)
}

// CleanupAbandonedUploadsJob 负责清理中断上传后残留的临时文件
type CleanupAbandonedUploadsJob struct {
	uploadSvc AbandonedUploadCleaner
	olderThan time.Duration
	logger    *zap.Logger
}

// NewCleanupAbandonedUploadsJob 是任务的构造函数，只清理早于 olderThan 的临时文件
func NewCleanupAbandonedUploadsJob(uploadSvc AbandonedUploadCleaner, olderThan time.Duration, logger *zap.Logger) *CleanupAbandonedUploadsJob {
	return &CleanupAbandonedUploadsJob{
		uploadSvc: uploadSvc,
		olderThan: olderThan,
		logger:    logger,
	}
}

// Run 是 Job 接口要求实现的方法
func (j *CleanupAbandonedUploadsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cleanedCount, err := j.uploadSvc.CleanupAbandonedUploads(ctx, j.olderThan)
	if err != nil {
		// 日志由 wrapper 统一处理开始和结束，这里只记录业务结果
		j.logger.Error("任务执行业务逻辑时捕获到错误", zap.String("job_name", j.Name()), zap.Error(err))
		return
	}
	j.logger.Info("任务业务逻辑执行完毕", zap.String("job_name", j.Name()), zap.Int("removed", cleanedCount))
}

// Name 方法让日志包装器可以打印出更有意义的任务名
func (j *CleanupAbandonedUploadsJob) Name() string {
	return "CleanupAbandonedUploadsJob"
}
