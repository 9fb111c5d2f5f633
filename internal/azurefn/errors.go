package azurefn

import "fmt"

// RemoteCallError is a non-2xx response from a function.
type RemoteCallError struct {
	Function   string
	StatusCode int
	StatusText string
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("azure function %s failed: %d %s", e.Function, e.StatusCode, e.StatusText)
}

// TransportError is a network-level failure (DNS, refused connection, timeout).
type TransportError struct {
	Function string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("azure function %s unreachable: %v", e.Function, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is a 2xx response whose body is not the expected JSON.
type DecodeError struct {
	Function string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("azure function %s returned malformed JSON: %v", e.Function, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
