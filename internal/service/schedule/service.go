// Package schedule maintains a doctor's informative weekly schedule: for each
// weekday, the "HH:MM" times the doctor is usually available. Booking never
// consults it.
package schedule

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

// DoctorStore is the part of the staff service the schedule needs.
type DoctorStore interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, schedule model.Schedule) error
}

type Service struct {
	doctors DoctorStore
}

func NewService(doctors DoctorStore) *Service {
	return &Service{doctors: doctors}
}

// Get returns the doctor's schedule in calendar order.
func (s *Service) Get(ctx context.Context, doctorID uuid.UUID) ([]model.ScheduleDay, error) {
	doctor, err := s.doctors.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return doctor.ScheduleData.Ordered(), nil
}

// Update normalizes raw and replaces the stored schedule.
func (s *Service) Update(ctx context.Context, doctorID uuid.UUID, raw map[string][]string) ([]model.ScheduleDay, error) {
	schedule, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	if err := s.doctors.UpdateSchedule(ctx, doctorID, schedule); err != nil {
		return nil, err
	}
	return schedule.Ordered(), nil
}

// Normalize lowercases weekday names, trims, de-duplicates and sorts times,
// and drops days without times. Unknown weekdays and malformed times are
// reported per field, e.g. schedule_data.monday[1].
func Normalize(raw map[string][]string) (model.Schedule, error) {
	fields := map[string][]string{}
	out := model.Schedule{}

	for rawDay, times := range raw {
		day := strings.ToLower(strings.TrimSpace(rawDay))
		if !validator.IsWeekday(day) {
			key := "schedule_data." + rawDay
			fields[key] = append(fields[key], fmt.Sprintf("%q is not a day of the week.", rawDay))
			continue
		}

		for i, t := range times {
			t = strings.TrimSpace(t)
			if !validator.IsTimeOfDay(t) {
				key := fmt.Sprintf("schedule_data.%s[%d]", day, i)
				fields[key] = append(fields[key], "The time must be in 24-hour HH:MM format.")
				continue
			}
			out[day] = append(out[day], t)
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}
	for day, times := range out {
		if len(times) == 0 {
			delete(out, day)
			continue
		}
		// "HH:MM" sorts lexically in time order.
		sort.Strings(times)
		out[day] = slices.Compact(times)
	}
	return out, nil
}
