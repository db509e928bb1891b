package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/jobs"
)

type notificationRepository interface {
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, n *models.Notification) error
	ExistsSince(ctx context.Context, userID string, nType models.NotificationType, requestID string, since time.Time) (bool, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) error
	Delete(ctx context.Context, id, userID string) error
	FindPreference(ctx context.Context, userID string) (*models.NotificationPreference, error)
	UpsertPreference(ctx context.Context, pref *models.NotificationPreference) error
}

type scannerRequestRepository interface {
	ListOpenScheduled(ctx context.Context) ([]models.MaintenanceRequest, error)
}

// NotificationConfig tunes the scanner and its worker pool.
type NotificationConfig struct {
	ScanInterval     time.Duration
	DueSoonThreshold time.Duration
	WorkerCount      int
	WorkerRetries    int
}

// NotificationService delivers in-app notifications. Lifecycle events are
// pushed directly; overdue and due-soon alerts come from a periodic scan
// fanned out through a worker queue.
type NotificationService struct {
	repo     notificationRepository
	requests scannerRequestRepository
	queue    *jobs.Queue
	config   NotificationConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewNotificationService(repo notificationRepository, requests scannerRequestRepository, config NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = time.Hour
	}
	if config.DueSoonThreshold <= 0 {
		config.DueSoonThreshold = 48 * time.Hour
	}

	s := &NotificationService{
		repo:     repo,
		requests: requests,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
	s.queue = jobs.NewQueue("notifications", s.handleJob, jobs.QueueConfig{
		Workers:    config.WorkerCount,
		MaxRetries: config.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool and the periodic scanner. It returns
// immediately; workers stop when ctx is cancelled.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)

	go func() {
		ticker := time.NewTicker(s.config.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.ScanOnce(ctx); err != nil {
					s.logger.Warn("notification scan failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop drains the worker pool.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(*models.Notification)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	return s.deliver(ctx, n)
}

// ScanOnce walks open scheduled requests and enqueues overdue and due-soon
// alerts. Alerts are deduplicated per request, recipient and day.
func (s *NotificationService) ScanOnce(ctx context.Context) error {
	open, err := s.requests.ListOpenScheduled(ctx)
	if err != nil {
		return fmt.Errorf("load open scheduled requests: %w", err)
	}

	now := s.now()
	for i := range open {
		req := &open[i]
		switch {
		case IsOverdue(req, now):
			days := DaysOverdue(req, now)
			title := "Maintenance request overdue"
			msg := fmt.Sprintf("%q is %d day(s) past its scheduled date.", req.Subject, days)
			s.enqueueForRecipients(ctx, req, models.NotifyOverdue, title, msg, now)
		case req.ScheduledDate != nil && req.ScheduledDate.Sub(now) <= s.config.DueSoonThreshold:
			title := "Maintenance due soon"
			msg := fmt.Sprintf("%q is scheduled for %s.", req.Subject, req.ScheduledDate.Format("2006-01-02"))
			s.enqueueForRecipients(ctx, req, models.NotifyDueSoon, title, msg, now)
		}
	}
	return nil
}

func (s *NotificationService) enqueueForRecipients(ctx context.Context, req *models.MaintenanceRequest, nType models.NotificationType, title, message string, now time.Time) {
	recipients := []string{req.CreatedByID}
	if req.TechnicianID != nil && *req.TechnicianID != req.CreatedByID {
		recipients = append(recipients, *req.TechnicianID)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, userID := range recipients {
		exists, err := s.repo.ExistsSince(ctx, userID, nType, req.ID, startOfDay)
		if err != nil {
			s.logger.Warn("notification dedupe check failed", zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		n := &models.Notification{
			ID:                 uuid.NewString(),
			UserID:             userID,
			Type:               nType,
			Title:              title,
			Message:            message,
			RelatedRequestID:   &req.ID,
			RelatedEquipmentID: &req.EquipmentID,
		}
		if err := s.queue.Enqueue(jobs.Job{ID: n.ID, Type: string(nType), Payload: n}); err != nil {
			s.logger.Warn("failed to enqueue notification", zap.Error(err))
		}
	}
}

// deliver persists a notification unless the recipient opted out.
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) error {
	pref, err := s.Preferences(ctx, n.UserID)
	if err != nil {
		return err
	}
	if !pref.InApp || !s.wantsType(pref, n.Type) {
		return nil
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	return nil
}

func (s *NotificationService) wantsType(pref *models.NotificationPreference, nType models.NotificationType) bool {
	switch nType {
	case models.NotifyOverdue:
		return pref.AlertOverdue
	case models.NotifyDueSoon:
		return pref.AlertDueSoon
	case models.NotifyCompleted:
		return pref.AlertComplete
	case models.NotifyAssigned:
		return pref.AlertAssigned
	default:
		return true
	}
}

// NotifyAssigned tells a technician about a new assignment.
func (s *NotificationService) NotifyAssigned(ctx context.Context, req *models.MaintenanceRequest) {
	if req.TechnicianID == nil {
		return
	}
	n := &models.Notification{
		ID:                 uuid.NewString(),
		UserID:             *req.TechnicianID,
		Type:               models.NotifyAssigned,
		Title:              "New maintenance assignment",
		Message:            fmt.Sprintf("You were assigned to %q.", req.Subject),
		RelatedRequestID:   &req.ID,
		RelatedEquipmentID: &req.EquipmentID,
	}
	if err := s.deliver(ctx, n); err != nil {
		s.logger.Warn("failed to deliver assignment notification", zap.Error(err))
	}
}

// NotifyStatusChange informs the creator about a lifecycle transition.
func (s *NotificationService) NotifyStatusChange(ctx context.Context, req *models.MaintenanceRequest, from, to models.RequestStatus) {
	nType := models.NotifyStatusChange
	title := "Request status updated"
	if to == models.StatusRepaired {
		nType = models.NotifyCompleted
		title = "Request completed"
	}

	n := &models.Notification{
		ID:                 uuid.NewString(),
		UserID:             req.CreatedByID,
		Type:               nType,
		Title:              title,
		Message:            fmt.Sprintf("%q moved from %s to %s.", req.Subject, from, to),
		RelatedRequestID:   &req.ID,
		RelatedEquipmentID: &req.EquipmentID,
	}
	if err := s.deliver(ctx, n); err != nil {
		s.logger.Warn("failed to deliver status notification", zap.Error(err))
	}
}

// ListForUser returns a user's notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// UnreadCount returns the unread badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one notification read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID, s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// Delete removes one notification.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

// Preferences returns stored preferences, falling back to defaults.
func (s *NotificationService) Preferences(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	pref, err := s.repo.FindPreference(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			def := models.DefaultNotificationPreference(userID)
			return &def, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return pref, nil
}

// UpdatePreferences replaces a user's preference row.
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID string, pref models.NotificationPreference) (*models.NotificationPreference, error) {
	pref.UserID = userID
	if err := s.repo.UpsertPreference(ctx, &pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}
	return &pref, nil
}
