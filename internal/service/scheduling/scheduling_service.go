package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/avialane/charterops/internal/domain"
	"github.com/avialane/charterops/internal/repository"
)

type SchedulingUseCase interface {
	CheckAvailability(ctx context.Context, resourceID int64, w domain.Window) (*domain.Availability, error)
	ValidateAssignment(ctx context.Context, aircraftID *int64, crewIDs []int64, w domain.Window) (*domain.ValidationResult, error)
	ValidateAssignmentOrFail(ctx context.Context, aircraftID *int64, crewIDs []int64, w domain.Window) error
	ValidateCapacity(ctx context.Context, aircraftID int64, passengerCount, crewCount int) error
	SummarizeFleet(ctx context.Context, w *domain.Window) (*domain.FleetSummary, error)
}

type Cache interface {
	GetFleetSummary(ctx context.Context) (*domain.FleetSummary, error)
	SetFleetSummary(ctx context.Context, summary *domain.FleetSummary) error
}

// SchedulingService answers availability questions over the shared resource
// pool. Every method is a pure read: repeated calls with unchanged underlying
// data return identical results.
type SchedulingService struct {
	resources repository.ResourceRepository
	bookings  repository.BookingRepository
	cache     Cache
}

func NewSchedulingService(resources repository.ResourceRepository, bookings repository.BookingRepository, cache Cache) *SchedulingService {
	return &SchedulingService{resources: resources, bookings: bookings, cache: cache}
}

func (s *SchedulingService) CheckAvailability(ctx context.Context, resourceID int64, w domain.Window) (*domain.Availability, error) {
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	intervals, err := s.bookings.ListActiveIntervals(ctx, resourceID, w)
	if err != nil {
		return nil, err
	}

	conflicts := make([]domain.ConflictEntry, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Window.Overlaps(w) {
			continue
		}
		conflicts = append(conflicts, domain.ConflictEntry{
			ResourceID:   resource.ID,
			ResourceName: resource.Name,
			BookingID:    iv.BookingID,
			Reference:    iv.Reference,
			Origin:       iv.Origin,
			Destination:  iv.Destination,
			Window:       iv.Window,
			Status:       iv.Status,
		})
	}

	availability := &domain.Availability{
		ResourceID: resource.ID,
		Available:  resource.Usable() && len(conflicts) == 0,
		Conflicts:  conflicts,
	}
	if !availability.Available {
		if !resource.Usable() {
			availability.Reason = fmt.Sprintf("resource status is %s", resource.Status)
		} else {
			availability.Reason = fmt.Sprintf("%d overlapping booking(s)", len(conflicts))
		}
	}
	return availability, nil
}

// ValidateAssignment resolves one optional aircraft and any number of crew
// members against a window and aggregates the verdicts. A missing aircraft or
// an empty crew list is legal: the corresponding bucket stays empty.
func (s *SchedulingService) ValidateAssignment(ctx context.Context, aircraftID *int64, crewIDs []int64, w domain.Window) (*domain.ValidationResult, error) {
	result := &domain.ValidationResult{
		Available:         true,
		AircraftConflicts: make([]domain.ConflictEntry, 0),
		CrewConflicts:     make([]domain.ConflictEntry, 0),
	}
	var blockers []string

	if aircraftID != nil {
		availability, err := s.CheckAvailability(ctx, *aircraftID, w)
		if err != nil {
			return nil, err
		}
		result.AircraftConflicts = append(result.AircraftConflicts, availability.Conflicts...)
		if !availability.Available {
			result.Available = false
			blockers = append(blockers, fmt.Sprintf("aircraft %d: %s", *aircraftID, availability.Reason))
		}
	}

	for _, crewID := range crewIDs {
		availability, err := s.CheckAvailability(ctx, crewID, w)
		if err != nil {
			return nil, err
		}
		result.CrewConflicts = append(result.CrewConflicts, availability.Conflicts...)
		if !availability.Available {
			result.Available = false
			blockers = append(blockers, fmt.Sprintf("crew member %d: %s", crewID, availability.Reason))
		}
	}

	if result.Available {
		result.Summary = "all requested resources are available"
	} else {
		result.Summary = strings.Join(blockers, "; ")
	}
	return result, nil
}

// ValidateAssignmentOrFail runs the same check and turns an unavailable
// result into a SchedulingConflictError carrying the full result. Called
// immediately before committing a reservation so a resource known to conflict
// is never attached.
func (s *SchedulingService) ValidateAssignmentOrFail(ctx context.Context, aircraftID *int64, crewIDs []int64, w domain.Window) error {
	result, err := s.ValidateAssignment(ctx, aircraftID, crewIDs, w)
	if err != nil {
		return err
	}
	if !result.Available {
		return &domain.SchedulingConflictError{Result: result}
	}
	return nil
}

// ValidateCapacity checks requested counts against the aircraft's declared
// limits. Equality to a limit passes; this check is independent of scheduling.
func (s *SchedulingService) ValidateCapacity(ctx context.Context, aircraftID int64, passengerCount, crewCount int) error {
	limits, err := s.resources.GetAircraftLimits(ctx, aircraftID)
	if err != nil {
		return err
	}
	if passengerCount > limits.PassengerCapacity {
		return &domain.InsufficientCapacityError{AircraftID: aircraftID, Field: "passenger", Limit: limits.PassengerCapacity, Requested: passengerCount}
	}
	if crewCount > limits.CrewCapacity {
		return &domain.InsufficientCapacityError{AircraftID: aircraftID, Field: "crew", Limit: limits.CrewCapacity, Requested: crewCount}
	}
	return nil
}

// SummarizeFleet rolls up aircraft availability. Windowed availability goes
// through CheckAvailability so the fleet view and the per-resource view can
// never disagree. The unwindowed summary is served from cache when present.
func (s *SchedulingService) SummarizeFleet(ctx context.Context, w *domain.Window) (*domain.FleetSummary, error) {
	if w == nil && s.cache != nil {
		if cached, err := s.cache.GetFleetSummary(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	aircraft, err := s.resources.ListByKind(ctx, domain.ResourceKindAircraft)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.ResourceStatus]int)
	available := make([]domain.Resource, 0)
	for _, a := range aircraft {
		counts[a.Status]++
		if !a.Usable() {
			continue
		}
		if w != nil {
			availability, err := s.CheckAvailability(ctx, a.ID, *w)
			if err != nil {
				return nil, err
			}
			if !availability.Available {
				continue
			}
		}
		available = append(available, a)
	}

	summary := &domain.FleetSummary{
		Total:             len(aircraft),
		CountsByStatus:    counts,
		AvailableAircraft: available,
	}
	// Empty fleet reports 0%, not NaN.
	if len(aircraft) > 0 {
		summary.PercentageAvailable = float64(len(available)) / float64(len(aircraft)) * 100
	}

	if w == nil && s.cache != nil {
		_ = s.cache.SetFleetSummary(ctx, summary)
	}
	return summary, nil
}

var _ SchedulingUseCase = (*SchedulingService)(nil)
