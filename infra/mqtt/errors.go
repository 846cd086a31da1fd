package mqtt

import "errors"

// ErrPublish wraps the last broker error once retries are exhausted.
var ErrPublish = errors.New("mqtt publish failed")
