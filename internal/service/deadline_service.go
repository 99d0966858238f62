package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/pkg/jobs"
)

type deadlineUserRepository interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type deadlineLogRepository interface {
	ExistsForFacilitatorWeek(ctx context.Context, facilitatorID string, week int) (bool, error)
}

// DeadlineService periodically checks whether facilitators have submitted
// their weekly activity log. A reminder goes out from Thursday 09:00; from
// Friday 17:00 a missed notice goes to the facilitator and an alert to every
// manager. Each notice is sent at most once per facilitator per ISO week.
type DeadlineService struct {
	users  deadlineUserRepository
	logs   deadlineLogRepository
	queue  jobEnqueuer
	logger *zap.Logger

	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sent     map[string]struct{}
	sentYear int
	sentWeek int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDeadlineService constructs a DeadlineService. A nil now func uses the
// wall clock.
func NewDeadlineService(users deadlineUserRepository, logs deadlineLogRepository, queue jobEnqueuer, logger *zap.Logger, interval time.Duration, now func() time.Time) *DeadlineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &DeadlineService{
		users:    users,
		logs:     logs,
		queue:    queue,
		logger:   logger,
		interval: interval,
		now:      now,
		sent:     make(map[string]struct{}),
	}
}

// Start launches the periodic scan loop.
func (s *DeadlineService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Scan(ctx); err != nil {
					s.logger.Warn("deadline scan failed", zap.Error(err))
				}
			}
		}
	}()
	s.logger.Info("deadline scanner started", zap.Duration("interval", s.interval))
}

// Stop halts the scan loop and waits for it to exit.
func (s *DeadlineService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Scan runs a single deadline pass for the current week.
func (s *DeadlineService) Scan(ctx context.Context) error {
	now := s.now().UTC()
	year, week := now.ISOWeek()

	// Dedupe entries only matter within their week; reset on rollover so the
	// map does not grow for the lifetime of the process.
	s.mu.Lock()
	if year != s.sentYear || week != s.sentWeek {
		s.sent = make(map[string]struct{})
		s.sentYear, s.sentWeek = year, week
	}
	s.mu.Unlock()

	remind := afterWeeklyMark(now, time.Thursday, 9)
	missed := afterWeeklyMark(now, time.Friday, 17)
	if !remind && !missed {
		return nil
	}

	facilitators, err := s.users.ListByRole(ctx, models.RoleFacilitator)
	if err != nil {
		return fmt.Errorf("list facilitators: %w", err)
	}

	var managers []models.User
	if missed {
		managers, err = s.users.ListByRole(ctx, models.RoleManager)
		if err != nil {
			return fmt.Errorf("list managers: %w", err)
		}
	}

	for _, facilitator := range facilitators {
		submitted, err := s.logs.ExistsForFacilitatorWeek(ctx, facilitator.ID, week)
		if err != nil {
			s.logger.Warn("failed to check weekly log",
				zap.String("facilitator_id", facilitator.ID), zap.Error(err))
			continue
		}
		if submitted {
			continue
		}

		data := map[string]interface{}{"week": week, "year": year}

		if missed {
			s.sendOnce(ctx, models.JobFacilitatorLogMissed, facilitator.ID, year, week, data)
			for _, manager := range managers {
				alertData := map[string]interface{}{
					"week":             week,
					"year":             year,
					"facilitator_id":   facilitator.ID,
					"facilitator_name": facilitator.FirstName + " " + facilitator.LastName,
				}
				s.sendOnce(ctx, models.JobManagerAlert, manager.ID, year, week, alertData)
			}
			continue
		}

		s.sendOnce(ctx, models.JobFacilitatorLogReminder, facilitator.ID, year, week, data)
	}

	return nil
}

func (s *DeadlineService) sendOnce(ctx context.Context, jobType, userID string, year, week int, data map[string]interface{}) {
	key := fmt.Sprintf("%s:%s:%d-%d", jobType, userID, year, week)
	if jobType == models.JobManagerAlert {
		key = fmt.Sprintf("%s:%s:%v:%d-%d", jobType, userID, data["facilitator_id"], year, week)
	}

	s.mu.Lock()
	if _, dup := s.sent[key]; dup {
		s.mu.Unlock()
		return
	}
	s.sent[key] = struct{}{}
	s.mu.Unlock()

	if _, err := s.queue.Enqueue(ctx, jobs.Envelope{Type: jobType, UserID: userID, Data: data}); err != nil {
		s.logger.Warn("failed to enqueue deadline notification",
			zap.String("type", jobType), zap.String("user_id", userID), zap.Error(err))
		s.mu.Lock()
		delete(s.sent, key)
		s.mu.Unlock()
	}
}

// afterWeeklyMark reports whether now has passed the given weekday and hour
// within the current ISO week.
func afterWeeklyMark(now time.Time, day time.Weekday, hour int) bool {
	current := now.Weekday()
	// ISO weeks run Monday..Sunday; Sunday sorts last.
	cur := isoDayIndex(current)
	mark := isoDayIndex(day)
	if cur != mark {
		return cur > mark
	}
	return now.Hour() >= hour
}

func isoDayIndex(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
