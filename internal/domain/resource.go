package domain

import "time"

type ResourceKind string

const (
	ResourceKindAircraft ResourceKind = "AIRCRAFT"
	ResourceKindCrew     ResourceKind = "CREW"
)

type ResourceStatus string

const (
	// Shared by both kinds.
	ResourceStatusAvailable ResourceStatus = "AVAILABLE"
	ResourceStatusInFlight  ResourceStatus = "IN_FLIGHT"

	// Aircraft only.
	ResourceStatusInMaintenance ResourceStatus = "IN_MAINTENANCE"
	ResourceStatusOutOfService  ResourceStatus = "OUT_OF_SERVICE"

	// Crew only.
	ResourceStatusResting  ResourceStatus = "RESTING"
	ResourceStatusInactive ResourceStatus = "INACTIVE"
)

// Resource is a schedulable unit: one aircraft or one crew member.
// PassengerCapacity and CrewCapacity are meaningful for aircraft only.
type Resource struct {
	ID                int64
	Kind              ResourceKind
	Name              string
	Status            ResourceStatus
	PassengerCapacity int
	CrewCapacity      int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Usable reports whether the resource's operational status permits new
// assignments at all, independent of any booking overlap.
func (r Resource) Usable() bool {
	return r.Status == ResourceStatusAvailable
}

type AircraftLimits struct {
	PassengerCapacity int
	CrewCapacity      int
}
