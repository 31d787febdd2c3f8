package fault

import "fmt"

// Code is a machine-readable fault code.
type Code string

// Precondition violations raised by the stream core.
const (
	// CodeModeLocked indicates a mode change while subscriptions exist.
	CodeModeLocked Code = "MODE_LOCKED"
	// CodeInvalidQueueSize indicates a non-positive asynchronous queue bound.
	CodeInvalidQueueSize Code = "INVALID_QUEUE_SIZE"
	// CodeBadArgument indicates a malformed stage argument.
	CodeBadArgument Code = "BAD_ARGUMENT"
)

// Recoverable error codes.
const (
	// CodeInvalidConfig indicates configuration that failed validation.
	CodeInvalidConfig Code = "INVALID_CONFIG"
	// CodeInternal indicates an unexpected internal error.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Fault is the unified streamkit error type.
type Fault struct {
	// Code is a machine-readable fault code.
	Code Code
	// Message is a human-readable description.
	Message string
	// Details contains additional context.
	Details map[string]any
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the string representation of the fault.
func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", f.Code, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Unwrap returns the underlying cause.
func (f *Fault) Unwrap() error { return f.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (f *Fault) WithCause(cause error) *Fault {
	f.Cause = cause
	return f
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (f *Fault) WithDetail(key string, value any) *Fault {
	if f.Details == nil {
		f.Details = make(map[string]any)
	}
	f.Details[key] = value
	return f
}

// New creates a fault with the given code and message.
func New(code Code, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// Newf creates a fault with a formatted message.
func Newf(code Code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidConfig creates a recoverable configuration error.
func InvalidConfig(message string) *Fault {
	return &Fault{Code: CodeInvalidConfig, Message: message}
}

// Internal creates a fault wrapping an unexpected internal error.
func Internal(cause error) *Fault {
	return &Fault{Code: CodeInternal, Message: "unexpected internal error", Cause: cause}
}

// Check panics with a *Fault if cond is false. Use for precondition
// violations: programming errors that are not designed to be recovered.
func Check(cond bool, code Code, message string) {
	if !cond {
		panic(New(code, message))
	}
}

// Checkf is Check with a formatted message.
func Checkf(cond bool, code Code, format string, args ...any) {
	if !cond {
		panic(Newf(code, format, args...))
	}
}
