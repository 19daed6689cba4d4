package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/models"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/repo"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
)

const dateLayout = "2006-01-02"

type Publisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

type BackofficeService struct {
	Repo   *repo.GormRepo
	Events Publisher
}

type ReservationInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
	PartySize *uint   `json:"party_size"`
	Status    *string `json:"status"`
}

type ScheduleInput struct {
	Type      string  `json:"type"`
	Mode      string  `json:"mode"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Moment    string  `json:"moment"`
}

func (s *BackofficeService) ListReservations(ctx context.Context, offset, limit int) ([]models.Reservation, error) {
	return s.Repo.ListReservations(ctx, offset, limit)
}

func (s *BackofficeService) Reservation(ctx context.Context, id uint) (*models.Reservation, error) {
	res, err := s.Repo.Reservation(ctx, id)
	return res, mapNotFound(err)
}

func (s *BackofficeService) CreateReservation(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	res := &models.Reservation{Status: models.StatusPending}
	if in.Name == nil || in.Date == nil || in.Time == nil || in.PartySize == nil {
		return nil, invalid("reservation", "name, date, time and party_size are required")
	}
	if err := applyReservation(res, in); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateReservation(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, "reservation_created", res.ID, map[string]any{"status": res.Status})
	return res, nil
}

// UpdateReservation applies the fields present in in, as a PATCH does.
func (s *BackofficeService) UpdateReservation(ctx context.Context, id uint, in ReservationInput) (*models.Reservation, error) {
	res, err := s.Repo.Reservation(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := applyReservation(res, in); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveReservation(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, "reservation_updated", res.ID, map[string]any{"status": res.Status})
	return res, nil
}

func (s *BackofficeService) DeleteReservation(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteReservation(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.publish(ctx, "reservation_deleted", id, nil)
	return nil
}

func applyReservation(res *models.Reservation, in ReservationInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 100 {
			return invalid("name", "name must be 1 to 100 characters")
		}
		res.Name = name
	}
	if in.Email != nil {
		res.Email = *in.Email
	}
	if in.Phone != nil {
		res.Phone = in.Phone
	}
	if in.Date != nil {
		if _, err := time.Parse(dateLayout, *in.Date); err != nil {
			return invalid("date", "date must use YYYY-MM-DD")
		}
		res.Date = *in.Date
	}
	if in.Time != nil {
		t, err := parseClock(*in.Time)
		if err != nil {
			return invalid("time", "time must use hh:mm[:ss]")
		}
		res.Time = t
	}
	if in.PartySize != nil {
		if *in.PartySize == 0 {
			return invalid("party_size", "party size must be positive")
		}
		res.PartySize = *in.PartySize
	}
	if in.Status != nil {
		switch *in.Status {
		case models.StatusPending, models.StatusAccepted, models.StatusRejected:
			res.Status = *in.Status
		default:
			return invalid("status", fmt.Sprintf("%q is not a valid choice", *in.Status))
		}
	}
	return nil
}

func parseClock(v string) (string, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", errors.New("bad time")
}

func (s *BackofficeService) ListSchedules(ctx context.Context) ([]models.ExceptionalSchedule, error) {
	return s.Repo.ListSchedules(ctx)
}

func (s *BackofficeService) Schedule(ctx context.Context, id uint) (*models.ExceptionalSchedule, error) {
	sch, err := s.Repo.Schedule(ctx, id)
	return sch, mapNotFound(err)
}

func (s *BackofficeService) CreateSchedule(ctx context.Context, in ScheduleInput) (*models.ExceptionalSchedule, error) {
	sch, err := s.validateSchedule(ctx, in, 0)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateSchedule(ctx, sch); err != nil {
		return nil, err
	}
	s.publish(ctx, "schedule_created", sch.ID, map[string]any{"type": sch.Type, "start_date": sch.StartDate})
	return sch, nil
}

func (s *BackofficeService) UpdateSchedule(ctx context.Context, id uint, in ScheduleInput) (*models.ExceptionalSchedule, error) {
	existing, err := s.Repo.Schedule(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	sch, err := s.validateSchedule(ctx, in, id)
	if err != nil {
		return nil, err
	}
	sch.ID = existing.ID
	sch.CreatedAt = existing.CreatedAt
	if err := s.Repo.SaveSchedule(ctx, sch); err != nil {
		return nil, err
	}
	s.publish(ctx, "schedule_updated", sch.ID, map[string]any{"type": sch.Type, "start_date": sch.StartDate})
	return sch, nil
}

func (s *BackofficeService) DeleteSchedule(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteSchedule(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.publish(ctx, "schedule_deleted", id, nil)
	return nil
}

// validateSchedule enforces the exceptional schedule rules: a single date
// needs a moment and no end, a range needs an end not before its start and
// always covers full days, openings fall on Sunday or Monday, closings on
// Tuesday to Saturday, and no two schedules overlap.
func (s *BackofficeService) validateSchedule(ctx context.Context, in ScheduleInput, exclude uint) (*models.ExceptionalSchedule, error) {
	start, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return nil, invalid("start_date", "start_date must use YYYY-MM-DD")
	}

	var end time.Time
	hasEnd := in.EndDate != nil && *in.EndDate != ""
	if hasEnd {
		if end, err = time.Parse(dateLayout, *in.EndDate); err != nil {
			return nil, invalid("end_date", "end_date must use YYYY-MM-DD")
		}
	}

	sch := &models.ExceptionalSchedule{Type: in.Type, StartDate: in.StartDate, Moment: in.Moment}
	checkEnd := in.StartDate

	switch in.Mode {
	case "single":
		if hasEnd {
			return nil, invalid("end_date", "end_date must not be set for a single date")
		}
		if in.Moment == "" {
			return nil, invalid("moment", "moment is required for a single date")
		}
	case "range":
		if !hasEnd {
			return nil, invalid("end_date", "end_date is required for a range")
		}
		if end.Before(start) {
			return nil, invalid("end_date", "end_date cannot be before start_date")
		}
		endStr := end.Format(dateLayout)
		sch.EndDate = &endStr
		sch.Moment = models.MomentFullDay
		checkEnd = endStr
	default:
		return nil, invalid("mode", "mode must be 'single' or 'range'")
	}

	switch sch.Moment {
	case models.MomentFullDay, models.MomentLunch, models.MomentDinner:
	default:
		return nil, invalid("moment", fmt.Sprintf("%q is not a valid choice", sch.Moment))
	}

	weekend := start.Weekday() == time.Sunday || start.Weekday() == time.Monday
	switch in.Type {
	case models.TypeOpen:
		if !weekend {
			return nil, invalid("start_date", "an exceptional opening must be on a Sunday or a Monday")
		}
	case models.TypeClosed:
		if weekend {
			return nil, invalid("start_date", "an exceptional closing must be on a weekday (Tuesday to Saturday)")
		}
	default:
		return nil, invalid("type", "type must be 'open' or 'closed'")
	}

	overlaps, err := s.Repo.ScheduleOverlaps(ctx, in.StartDate, checkEnd, exclude)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, invalid("detail", "this period overlaps an existing exceptional opening or closing")
	}
	return sch, nil
}

// publish never fails the request: a broker outage only costs the event.
func (s *BackofficeService) publish(ctx context.Context, kind string, id uint, extra map[string]any) {
	if s.Events == nil {
		return
	}
	event := map[string]any{"type": kind, "id": id}
	for k, v := range extra {
		event[k] = v
	}
	if err := s.Events.PublishEvent(ctx, strconv.FormatUint(uint64(id), 10), event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "event", kind, "error", err)
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
