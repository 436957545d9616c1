package homework

import "fmt"

// Status is the review state reported by Practicum for one submission.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

// Verdicts maps every known review status to the human-readable verdict
// sentence included in a notification. The table is fixed; a status
// outside of it means the API contract has drifted.
var Verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Submission is one homework entry as reported by the API.
type Submission struct {
	Name   string
	Status Status
}

// ParseStatus extracts the name and review status from one raw
// submission entry and renders the notification text. Pure: no I/O.
func ParseStatus(raw any) (string, error) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: submission entry is not an object", ErrSchema)
	}

	name, ok := entry["homework_name"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing submission name", ErrSchema)
	}

	statusRaw, ok := entry["status"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing status field", ErrSchema)
	}

	verdict, ok := Verdicts[Status(statusRaw)]
	if !ok {
		return "", fmt.Errorf("%w: unknown status code: %q", ErrSchema, statusRaw)
	}

	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", name, verdict), nil
}
