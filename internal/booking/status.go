package booking

type Status string

const (
	StatusPending   Status = "Pending"
	StatusPaid      Status = "Paid"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition treats an unknown stored status like Pending, since older
// bookings were saved with whatever the form carried.
func CanTransition(from, to Status) bool {
	if _, known := validNext[from]; !known {
		from = StatusPending
	}
	return validNext[from][to]
}
