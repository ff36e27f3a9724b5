package shared

// BaseAggregateRoot carries the timestamps, optimistic-lock version and the
// buffer of lifecycle events recorded since the aggregate was loaded.
// Aggregates declare their own identity: referral and earning ids are database
// sequences while payout ids are generated strings.
type BaseAggregateRoot struct {
	Timestamps
	Version      int
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		Timestamps: NewTimestamps(),
		Version:    1,
	}
}

func (a *BaseAggregateRoot) GetVersion() int   { return a.Version }
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent buffers an event for publication after commit
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the buffered events, oldest first
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
