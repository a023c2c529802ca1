// Package scheduler refreshes the draw history on a cron schedule and posts a frequency chart
package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"

	"github.com/bububa/marksix-agents/marksix"
	"github.com/bububa/marksix-agents/marksix/history"
)

// ErrRunning returned by RunOnce while a previous run has not finished
var ErrRunning = errors.New("scheduled job is already running")

const (
	DefaultSpec = "0 22 * * *"
	// ChartContentType mime type of the xlsx chart
	ChartContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Notifier delivers the chart to a chat
type Notifier interface {
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
}

// Archiver stores a copy of the chart, history.S3Source implements it
type Archiver interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
}

// Scheduler runs the refresh and chart job
type Scheduler struct {
	Config
	cron     *cron.Cron
	source   history.Source
	notifier Notifier
	chatID   int64
	running  *atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// New returns a Scheduler posting to chatID, the job is registered at spec in the configured location
func New(spec string, source history.Source, notifier Notifier, chatID int64, opts ...Option) (*Scheduler, error) {
	ret := &Scheduler{
		Config: Config{
			location: time.Local,
			logger:   slog.Default(),
			now:      time.Now,
		},
		source:   source,
		notifier: notifier,
		chatID:   chatID,
		running:  atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if spec == "" {
		spec = DefaultSpec
	}
	ret.cron = cron.New(cron.WithLocation(ret.location))
	if _, err := ret.cron.AddFunc(spec, ret.job); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return ret, nil
}

// Start runs the cron loop in the background until ctx is done or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("location", s.location.String()), slog.Time("next", s.Next()))
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop stops the cron loop and waits for a running job
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
}

// Next returns the next scheduled run
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) job() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled job failed", slog.String("error", err.Error()))
	}
}

// RunOnce refreshes the history, builds the frequency chart, sends it and archives it.
// A failed refresh is logged and the stored history is used.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)
	start := s.now()
	if s.refresher != nil {
		if err := s.refresher.Refresh(ctx); err != nil {
			s.logger.Warn("history refresh failed", slog.String("error", err.Error()))
		}
	}
	records, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("load history: %w", history.ErrNotAvailable)
	}
	chart, err := history.FrequencyChart(records)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	name := fmt.Sprintf("marksix-frequency-%s.xlsx", start.In(s.location).Format(marksix.DateLayout))
	data := chart.Bytes()
	if err := s.notifier.SendDocument(ctx, s.chatID, name, data, Caption(records)); err != nil {
		return fmt.Errorf("send chart: %w", err)
	}
	if s.archiver != nil {
		key := s.archivePrefix + name
		if err := s.archiver.Put(ctx, key, bytes.NewReader(data), ChartContentType); err != nil {
			return fmt.Errorf("archive chart: %w", err)
		}
	}
	s.logger.Info("scheduled job done", slog.Int("draws", len(records)), slog.Duration("took", s.now().Sub(start)))
	return nil
}

// Caption describes the latest draw of newest first records
func Caption(records []history.Record) string {
	if len(records) == 0 {
		return ""
	}
	latest := records[0]
	numbers := make([]string, 0, marksix.NumbersCount)
	for _, n := range latest.Numbers {
		numbers = append(numbers, strconv.Itoa(n))
	}
	extra := "N/A"
	if latest.Extra != nil {
		extra = strconv.Itoa(*latest.Extra)
	}
	draw := latest.FormatDate()
	if latest.Draw != "" {
		draw = latest.Draw + " " + draw
	}
	return fmt.Sprintf("📊 Mark Six number frequency over %d draws (%s to %s)\nLatest draw %s: %s + Extra: %s",
		len(records), records[len(records)-1].FormatDate(), latest.FormatDate(), draw, strings.Join(numbers, ", "), extra)
}
