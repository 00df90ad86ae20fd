package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Category enumerates issue categories shared by tickets and articles.
type Category string

const (
	CategoryNetwork  Category = "network"
	CategorySoftware Category = "software"
	CategoryHardware Category = "hardware"
	CategoryAccess   Category = "access"
	CategoryEmail    Category = "email"
	CategoryGeneral  Category = "general"
)

// Ticket is the aggregate for support requests. TicketID carries the
// TKT-NNN identifier and is immutable once assigned.
type Ticket struct {
	ID          int64
	TicketID    string
	Title       string
	Description string
	Priority    TicketPriority
	Category    Category
	Status      TicketStatus
	Requester   string
	Resolution  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidStatus reports whether s is a known ticket status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known ticket priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known issue category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryNetwork, CategorySoftware, CategoryHardware, CategoryAccess, CategoryEmail, CategoryGeneral:
		return true
	}
	return false
}
