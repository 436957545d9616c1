package homework

import "fmt"

// CheckResponse asserts that a decoded API payload has the documented
// shape and extracts the submission list together with the
// server-reported current_date marker.
//
// An empty homeworks list is not an error: it validates successfully
// and the caller treats it as "nothing new". Field-level validation of
// each entry is ParseStatus's job.
func CheckResponse(raw any) ([]any, int64, error) {
	body, ok := raw.(map[string]any)
	if !ok {
		return nil, 0, fmt.Errorf("%w: response is not an object", ErrSchema)
	}

	homeworksRaw, ok := body["homeworks"]
	if !ok {
		return nil, 0, fmt.Errorf("%w: missing homeworks list", ErrSchema)
	}

	homeworks, ok := homeworksRaw.([]any)
	if !ok {
		return nil, 0, fmt.Errorf("%w: homeworks is not a list", ErrSchema)
	}

	// encoding/json decodes every JSON number into float64.
	currentDateRaw, ok := body["current_date"].(float64)
	if !ok || currentDateRaw != float64(int64(currentDateRaw)) {
		return nil, 0, fmt.Errorf("%w: missing or invalid current_date", ErrSchema)
	}

	return homeworks, int64(currentDateRaw), nil
}
