package domain

// Status is the lifecycle state of a customer.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Customer is one synthetic shopper moving through a funnel during a run.
type Customer struct {
	ID        string `json:"id"`
	PersonaID string `json:"persona_id"`
	Traits    Traits `json:"traits"`

	// StepIndex is the 0-based position in the funnel; always < len(funnel.Steps).
	StepIndex int `json:"step_index"`

	// Elapsed accumulates dwell time in the current step and resets on every
	// step transition.
	Elapsed float64 `json:"elapsed"`

	Status Status `json:"status"`

	// Reason is set only when Status is StatusAbandoned.
	Reason TriggerKind `json:"reason,omitempty"`
}

// NewCustomer spawns an active customer at the first step with its own copy
// of the persona traits.
func NewCustomer(id string, p Persona) Customer {
	return Customer{
		ID:        id,
		PersonaID: p.ID,
		Traits:    p.Traits,
		Status:    StatusActive,
	}
}
