package orders

type Status string

const (
	StatusProcessing Status = "processing"
	StatusDelivering Status = "delivering"
	StatusCompleted  Status = "completed"
)

var validNext = map[Status]map[Status]bool{
	StatusProcessing: {StatusDelivering: true},
	StatusDelivering: {StatusCompleted: true},
	StatusCompleted:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// DisplayClass maps a status to its highlight class. Unknown statuses get no
// highlight; they are not an error.
func DisplayClass(s Status) string {
	switch s {
	case StatusProcessing:
		return "blue-color"
	case StatusDelivering:
		return "yellow-color"
	case StatusCompleted:
		return "green-color"
	default:
		return ""
	}
}
