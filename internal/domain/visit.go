package domain

import "strings"

type VisitStatus string

const (
	VisitPending   VisitStatus = "pending"
	VisitApproved  VisitStatus = "approved"
	VisitDenied    VisitStatus = "denied"
	VisitCompleted VisitStatus = "completed"
)

func ParseVisitStatus(s string) (VisitStatus, bool) {
	switch VisitStatus(s) {
	case VisitPending, VisitApproved, VisitDenied, VisitCompleted:
		return VisitStatus(s), true
	default:
		return "", false
	}
}

// Action is a status transition offered to the operator for a visit.
type Action struct {
	Name   string      // approve, deny, complete
	Target VisitStatus // status submitted to the API
}

var (
	ActionApprove  = Action{Name: "approve", Target: VisitApproved}
	ActionDeny     = Action{Name: "deny", Target: VisitDenied}
	ActionComplete = Action{Name: "complete", Target: VisitCompleted}
)

// Actions lists the transitions the dashboard offers for a status. denied and
// completed are terminal.
func (s VisitStatus) Actions() []Action {
	switch s {
	case VisitPending:
		return []Action{ActionApprove, ActionDeny}
	case VisitApproved:
		return []Action{ActionComplete}
	default:
		return nil
	}
}

func (s VisitStatus) Terminal() bool {
	return len(s.Actions()) == 0
}

// IsActionTarget reports whether some action submits s. Only these statuses
// may be sent from the dashboard.
func IsActionTarget(s VisitStatus) bool {
	switch s {
	case VisitApproved, VisitDenied, VisitCompleted:
		return true
	default:
		return false
	}
}

type Visit struct {
	ID              string      `json:"id"`
	VisitorName     string      `json:"visitor_name"`
	VisitorDocument string      `json:"visitor_document"`
	Destination     string      `json:"destination"`
	Purpose         string      `json:"purpose"`
	Notes           string      `json:"notes"`
	Status          VisitStatus `json:"status"`
	EntryTime       Timestamp   `json:"entry_time"`
	ExitTime        *Timestamp  `json:"exit_time,omitempty"`
	ApprovedBy      string      `json:"approved_by,omitempty"`
	CreatedBy       string      `json:"created_by,omitempty"`
}

func (v Visit) Actions() []Action {
	return v.Status.Actions()
}

type VisitCreate struct {
	VisitorName     string `json:"visitor_name"`
	VisitorDocument string `json:"visitor_document"`
	Destination     string `json:"destination"`
	Purpose         string `json:"purpose"`
	Notes           string `json:"notes"`
}

// Normalize trims every field; notes stays "" when left blank.
func (c VisitCreate) Normalize() VisitCreate {
	return VisitCreate{
		VisitorName:     strings.TrimSpace(c.VisitorName),
		VisitorDocument: strings.TrimSpace(c.VisitorDocument),
		Destination:     strings.TrimSpace(c.Destination),
		Purpose:         strings.TrimSpace(c.Purpose),
		Notes:           strings.TrimSpace(c.Notes),
	}
}

// MissingFields returns the JSON names of required fields left blank.
func (c VisitCreate) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.VisitorName) == "" {
		missing = append(missing, "visitor_name")
	}
	if strings.TrimSpace(c.VisitorDocument) == "" {
		missing = append(missing, "visitor_document")
	}
	if strings.TrimSpace(c.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(c.Purpose) == "" {
		missing = append(missing, "purpose")
	}
	return missing
}

type VisitUpdate struct {
	Status VisitStatus `json:"status"`
}

type DashboardStats struct {
	VisitsToday    int `json:"visits_today"`
	PendingVisits  int `json:"pending_visits"`
	VisitorsInside int `json:"visitors_inside"`
}
