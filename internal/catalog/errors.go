package catalog

import "errors"

// ErrCityNotSupported is matched by every NotFoundError via errors.Is.
var ErrCityNotSupported = errors.New("city not supported")

// NotFoundError is returned by Lookup for a city outside the whitelist.
// City holds the value as the caller supplied it.
type NotFoundError struct {
	City string
}

func (e *NotFoundError) Error() string {
	return "City not supported: " + e.City
}

// Is reports whether target is ErrCityNotSupported.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrCityNotSupported
}
