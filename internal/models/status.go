package models

// Status is the stage of a case in the intake-to-payment workflow.
type Status string

const (
	StatusNew        Status = "New"
	StatusProcessing Status = "Processing"
	StatusTraveled   Status = "Traveled"
	StatusReturned   Status = "Returned"
	StatusPaid       Status = "Paid"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusNew,
	StatusProcessing,
	StatusTraveled,
	StatusReturned,
	StatusPaid,
}

// ParseStatus returns the Status named by s. Matching is exact.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether the case is fully paid.
func (s Status) IsTerminal() bool {
	return s == StatusPaid
}
