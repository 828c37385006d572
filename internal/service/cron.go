package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"beacon-core/internal/model"
	"beacon-core/pkg/logger"
	"beacon-core/pkg/utils/lock"
)

const cycleLockKey = "beacon:cycle"

// Detector 一次检测周期，由 beacon.Beacon 实现
type Detector interface {
	Detect(ctx context.Context) (model.CycleReport, error)
}

// CronService 按固定间隔驱动检测周期
// SkipIfStillRunning 保证上一个周期没跑完时不会再开新的；
// 配了 Redis 锁时，多副本之间同一时刻也只有一个在跑
type CronService struct {
	cron     *cron.Cron
	detector Detector
	interval time.Duration
	locker   lock.DistributedLock
	lockTTL  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func NewCronService(detector Detector, interval time.Duration, locker lock.DistributedLock, lockTTL time.Duration) *CronService {
	l := cronLogger{l: logger.Log.Sugar().Named("cron")}
	c := cron.New(cron.WithChain(
		cron.Recover(l),
		cron.SkipIfStillRunning(l),
	))
	if lockTTL <= 0 {
		lockTTL = 2 * interval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CronService{
		cron:     c,
		detector: detector,
		interval: interval,
		locker:   locker,
		lockTTL:  lockTTL,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *CronService) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.RunCycle); err != nil {
		return fmt.Errorf("register detection job %q: %w", spec, err)
	}

	s.cron.Start()
	logger.Info("Cron Service started", zap.Duration("interval", s.interval))
	return nil
}

// Stop 停止调度并等待正在运行的周期结束
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	logger.Info("Cron Service stopped")
}

// RunCycle 执行一次检测；错误只记录，不影响下一次调度
func (s *CronService) RunCycle() {
	ctx := s.ctx

	if s.locker != nil {
		locked, err := s.locker.Acquire(ctx, cycleLockKey, s.lockTTL)
		if err != nil || !locked {
			logger.Debug("RunCycle: 获取锁失败或已有实例在运行", zap.Error(err))
			return
		}
		defer func() {
			if err := s.locker.Release(context.Background(), cycleLockKey); err != nil {
				logger.Warn("release cycle lock failed", zap.Error(err))
			}
		}()
	}

	report, err := s.detector.Detect(ctx)
	if err != nil {
		logger.Error("detection cycle finished with errors", zap.Error(err))
	}
	logger.Debug("detection cycle done",
		zap.Int("synced", len(report.Synced)),
		zap.Int("failed", len(report.Failed)),
		zap.Bool("skipped", report.Skipped),
		zap.Strings("alerts", report.AlertsSent),
		zap.Duration("took", report.Duration))
}

// cronLogger 把 cron 的 key/value 日志转给 zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
