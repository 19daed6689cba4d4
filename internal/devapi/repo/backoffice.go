package repo

import (
	"context"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/models"
)

func (r *GormRepo) ListReservations(ctx context.Context, offset, limit int) ([]models.Reservation, error) {
	out := []models.Reservation{}
	q := r.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) Reservation(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.DB.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &res, nil
}

func (r *GormRepo) CreateReservation(ctx context.Context, res *models.Reservation) error {
	return r.DB.WithContext(ctx).Create(res).Error
}

func (r *GormRepo) SaveReservation(ctx context.Context, res *models.Reservation) error {
	return r.DB.WithContext(ctx).Save(res).Error
}

func (r *GormRepo) DeleteReservation(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Reservation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListSchedules(ctx context.Context) ([]models.ExceptionalSchedule, error) {
	out := []models.ExceptionalSchedule{}
	if err := r.DB.WithContext(ctx).Order("start_date").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) Schedule(ctx context.Context, id uint) (*models.ExceptionalSchedule, error) {
	var s models.ExceptionalSchedule
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *GormRepo) CreateSchedule(ctx context.Context, s *models.ExceptionalSchedule) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) SaveSchedule(ctx context.Context, s *models.ExceptionalSchedule) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *GormRepo) DeleteSchedule(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.ExceptionalSchedule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ScheduleOverlaps reports whether [start, end] intersects a stored schedule
// other than exclude. A stored schedule without an end date covers its start
// date only. Dates are ISO strings, so they compare lexically.
func (r *GormRepo) ScheduleOverlaps(ctx context.Context, start, end string, exclude uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.ExceptionalSchedule{}).
		Where("start_date <= ? AND COALESCE(end_date, start_date) >= ?", end, start)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
