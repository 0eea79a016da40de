package tui

import "errors"

// ErrMissingSessionFactory is returned when the session factory is not provided.
var ErrMissingSessionFactory = errors.New("tui: session factory is required")
