package a2a

import "fmt"

// DiscoveryError indicates that card resolution failed for a single address.
// Callers performing batch discovery log it and continue with the remaining
// addresses.
type DiscoveryError struct {
	Address string
	Err     error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("card discovery failed for %s: %v", e.Address, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// NewDiscoveryError wraps err as a DiscoveryError for the given address.
func NewDiscoveryError(address string, err error) *DiscoveryError {
	return &DiscoveryError{Address: address, Err: err}
}
