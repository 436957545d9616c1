package homework

import "errors"

// ErrSchema marks an API response that does not match the documented
// shape. It is transient from the loop's point of view: the same window
// is retried on the next poll cycle.
var ErrSchema = errors.New("schema error")
