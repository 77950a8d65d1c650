package appointment

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusInChair   Status = "INCHAIR"
	StatusCompleted Status = "COMPLETED"
)

// The queue board only ever moves forward. PENDING has no next here:
// leaving PENDING is payment-gated, and COMPLETED is terminal.
var nextStatus = map[Status]Status{
	StatusConfirmed: StatusInChair,
	StatusInChair:   StatusCompleted,
}

var statusLabels = map[Status]string{
	StatusPending:   "Waiting for payment",
	StatusConfirmed: "In queue",
	StatusInChair:   "In chair",
	StatusCompleted: "Done",
}

var statusColors = map[Status]string{
	StatusPending:   "amber",
	StatusConfirmed: "blue",
	StatusInChair:   "violet",
	StatusCompleted: "green",
}

func IsValid(s Status) bool {
	_, ok := statusLabels[s]
	return ok
}

// NextStatus returns the next board status, or false when there is no
// further transition (terminal, unknown, or payment-gated).
func NextStatus(current Status) (Status, bool) {
	next, ok := nextStatus[current]
	return next, ok
}

func Label(s Status) string {
	return statusLabels[s]
}

func Color(s Status) string {
	return statusColors[s]
}
