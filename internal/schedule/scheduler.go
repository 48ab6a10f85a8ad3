package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var ErrInvalidInterval = errors.New("schedule: interval must be at least one second")

// Scheduler 以固定间隔运行任务, 同一任务的上一次执行未结束时跳过本次触发
type Scheduler struct {
	log     zerolog.Logger
	entries []entry
}

type entry struct {
	interval   time.Duration
	task       Task
	runOnStart bool
}

type Option func(e *entry)

// WithRunOnStart 启动时立即执行一次, 不等第一个间隔
func WithRunOnStart() Option {
	return func(e *entry) {
		e.runOnStart = true
	}
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		log: log.With().Str("component", "scheduler").Logger(),
	}
}

// Add 注册任务. cron.Every 会把不足一秒的部分截掉, 所以间隔最少一秒
func (s *Scheduler) Add(interval time.Duration, task Task, opts ...Option) error {
	if interval < time.Second {
		return fmt.Errorf("%w: got %s for %q", ErrInvalidInterval, interval, task.Name())
	}
	e := entry{interval: interval, task: task}
	for _, opt := range opts {
		opt(&e)
	}
	s.entries = append(s.entries, e)
	s.log.Info().
		Str("task", task.Name()).
		Dur("interval", interval).
		Msg("task registered")
	return nil
}

// Run 阻塞直到 ctx 结束, 返回前等待正在执行的任务完成
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{log: s.log}
	c := cron.New(cron.WithLogger(cl))

	var started sync.WaitGroup
	for _, e := range s.entries {
		// 启动时的那次执行不经过 cron, recover 需要包在 job 自身上
		job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(s.job(ctx, e.task))
		c.Schedule(cron.Every(e.interval), job)
		if e.runOnStart {
			started.Add(1)
			go func() {
				defer started.Done()
				job.Run()
			}()
		}
	}

	c.Start()
	s.log.Info().Int("tasks", len(s.entries)).Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	started.Wait()
	s.log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) job(ctx context.Context, task Task) cron.Job {
	return cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := task.Run(ctx); err != nil {
			s.log.Error().
				Err(err).
				Str("task", task.Name()).
				Dur("elapsed", time.Since(start)).
				Msg("task failed")
			return
		}
		s.log.Debug().
			Str("task", task.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("task completed")
	})
}

// cronLogger 把 cron 内部日志转给 zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.log.Warn().Msg("tick skipped, previous run still in flight")
		return
	}
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
