package domain

// AggregateRoot collects the domain events an aggregate records during a
// business operation. Embed it in aggregate structs.
//
// Events stay pending until the repository has persisted the aggregate; the
// caller then drains them with ClearDomainEvents.
type AggregateRoot struct {
	domainEvents []Event
}

// AddDomainEvent appends an event to the pending list.
func (a *AggregateRoot) AddDomainEvent(event Event) {
	a.domainEvents = append(a.domainEvents, event)
}

// DomainEvents returns the pending events in the order they were recorded.
func (a *AggregateRoot) DomainEvents() []Event {
	out := make([]Event, len(a.domainEvents))
	copy(out, a.domainEvents)
	return out
}

// ClearDomainEvents drops all pending events. Call it after a successful save.
func (a *AggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
