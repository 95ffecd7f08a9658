package domain

// ConflictEntry describes one active booking interval blocking a resource.
// ResourceName carries the display context of the blocked resource so the
// presentation layer can render the blocker without another lookup.
type ConflictEntry struct {
	ResourceID   int64         `json:"resource_id"`
	ResourceName string        `json:"resource_name"`
	BookingID    int64         `json:"booking_id"`
	Reference    string        `json:"reference"`
	Origin       string        `json:"origin"`
	Destination  string        `json:"destination"`
	Window       Window        `json:"window"`
	Status       BookingStatus `json:"status"`
}

// Availability is the verdict for one resource and one window.
type Availability struct {
	ResourceID int64           `json:"resource_id"`
	Available  bool            `json:"available"`
	Conflicts  []ConflictEntry `json:"conflicts,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// ValidationResult aggregates per-resource verdicts for one assignment
// request. It is ephemeral and never persisted.
type ValidationResult struct {
	Available         bool            `json:"available"`
	AircraftConflicts []ConflictEntry `json:"aircraft_conflicts,omitempty"`
	CrewConflicts     []ConflictEntry `json:"crew_conflicts,omitempty"`
	Summary           string          `json:"summary"`
}

// FleetSummary is the fleet-wide availability rollup for aircraft.
type FleetSummary struct {
	Total               int                    `json:"total"`
	CountsByStatus      map[ResourceStatus]int `json:"counts_by_status"`
	AvailableAircraft   []Resource             `json:"available_aircraft"`
	PercentageAvailable float64                `json:"percentage_available"`
}
