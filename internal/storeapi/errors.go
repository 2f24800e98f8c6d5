package storeapi

import (
	"strconv"
)

// NetworkError reports a failed API call: either a transport failure (Err
// set, Status zero) or a non-2xx response (Status set).
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return e.Op + ": unexpected status " + strconv.Itoa(e.Status)
	}
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": request failed"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Unauthorized reports a rejected login.
func (e *NetworkError) Unauthorized() bool {
	return e.Status == 401 || e.Status == 403
}
