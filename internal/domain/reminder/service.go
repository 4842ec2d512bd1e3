package reminder

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sereno/sereno/internal/platform/httperr"
	"github.com/sereno/sereno/internal/platform/websocket"
)

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Service manages medication reminders and intake recording.
type Service struct {
	repo   Repository
	events websocket.EventPublisher
	logger zerolog.Logger
}

func NewService(repo Repository, events websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

// List returns a user's reminders, optionally narrowed by date range. An
// empty result is an empty list, never an error.
func (s *Service) List(ctx context.Context, suffererID int64, f ListFilter) ([]*Reminder, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}

	reminders, err := s.repo.ListBySufferer(ctx, suffererID, f)
	if err != nil {
		return nil, httperr.Server("Failed to fetch reminders", err)
	}
	return reminders, nil
}

// Create stores a reminder and its times in one transaction.
func (s *Service) Create(ctx context.Context, suffererID int64, in *Input) (*Reminder, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	rem := &Reminder{
		SuffererID:      suffererID,
		MedicineName:    in.MedicineName,
		MedicineDetails: in.MedicineDetails,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Times:           in.Times,
	}
	if err := s.repo.Create(ctx, rem); err != nil {
		return nil, httperr.DB("Failed to create reminder", err)
	}
	rem.decorate()
	return rem, nil
}

// Update rewrites a reminder and replaces its times atomically.
func (s *Service) Update(ctx context.Context, rawID string, in *Input) (*Reminder, error) {
	id, err := ParseReminderID(rawID)
	if err != nil {
		return nil, httperr.NotFound("Reminder not found")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("Reminder not found")
	}
	if err != nil {
		return nil, httperr.DB("Failed to fetch reminder", err)
	}

	rem := &Reminder{
		ID:              id,
		SuffererID:      existing.SuffererID,
		MedicineName:    in.MedicineName,
		MedicineDetails: in.MedicineDetails,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Times:           in.Times,
	}
	if err := s.repo.Update(ctx, rem); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httperr.NotFound("Reminder not found")
		}
		return nil, httperr.DB("Failed to update reminder", err)
	}
	rem.decorate()
	return rem, nil
}

// Delete removes a reminder with its times and intake history intact.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseReminderID(rawID)
	if err != nil {
		return httperr.NotFound("Reminder not found")
	}

	err = s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("Reminder not found")
	}
	if err != nil {
		return httperr.DB("Failed to delete reminder", err)
	}
	return nil
}

// MarkTaken records one dose and notifies the owner's reminder topic.
func (s *Service) MarkTaken(ctx context.Context, rawID string, in *IntakeInput) (*Intake, error) {
	id, err := ParseReminderID(rawID)
	if err != nil {
		return nil, httperr.NotFound("Reminder not found")
	}
	if in.Date == "" || in.Time == "" {
		return nil, httperr.Validation("Missing required fields: date, time")
	}
	if !timePattern.MatchString(in.Time) {
		return nil, httperr.Validation("time must be HH:MM")
	}

	rem, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("Reminder not found")
	}
	if err != nil {
		return nil, httperr.DB("Failed to fetch reminder", err)
	}

	intake := &Intake{ReminderID: id, Date: in.Date, Time: in.Time}
	if err := s.repo.RecordIntake(ctx, intake); err != nil {
		return nil, httperr.DB("Failed to record intake", err)
	}

	if s.events != nil {
		evt := websocket.NewEvent("reminder.taken", websocket.ReminderTopic(rem.SuffererID), map[string]interface{}{
			"reminderId": FormatReminderID(id),
			"date":       intake.Date,
			"time":       intake.Time,
			"recordedAt": intake.RecordedAt,
		})
		if err := s.events.Publish(ctx, evt); err != nil {
			s.logger.Warn().Err(err).Int64("reminder_id", id).Msg("intake event not published")
		}
	}

	return intake, nil
}

func validateInput(in *Input) error {
	if strings.TrimSpace(in.MedicineName) == "" || in.StartDate == "" || in.EndDate == "" {
		return httperr.Validation("Missing required fields: medicineName, startDate, endDate.")
	}
	for _, t := range in.Times {
		if !timePattern.MatchString(t) {
			return httperr.Validation("times entries must be HH:MM")
		}
	}
	return nil
}

func validateFilter(f ListFilter) error {
	if f.StartDate != "" && f.EndDate != "" && f.EndDate < f.StartDate {
		return httperr.Validation("endDate must not precede startDate")
	}
	return nil
}
