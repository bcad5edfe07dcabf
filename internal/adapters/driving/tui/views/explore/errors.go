package explore

import "errors"

// ErrNoExplorerService indicates that no explorer service was provided.
var ErrNoExplorerService = errors.New("explorer service is required")
