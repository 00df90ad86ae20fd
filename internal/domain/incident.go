package domain

import "time"

// Incident tracks a major outage distinct from individual tickets.
type Incident struct {
	ID            int64
	IncidentID    string
	Title         string
	Description   string
	Priority      TicketPriority
	Status        string
	Active        bool
	AffectedUsers int
	Since         time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
