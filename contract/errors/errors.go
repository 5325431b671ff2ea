package errors

// Error codes for the event bus contracts. Keep stable; used across adapters and the bus.
const (
	ErrCodeInvalidArgument     = "eventbus.invalid_argument"
	ErrCodeNilHandler          = "eventbus.nil_handler"
	ErrCodeBusClosed           = "eventbus.bus_closed"
	ErrCodeSchedulerStopped    = "eventbus.scheduler_stopped"
	ErrCodePostFailed          = "eventbus.post_failed"
	ErrCodeSerializationFailed = "eventbus.serialization_failed"
	ErrCodeSinkNotConfigured   = "eventbus.sink_not_configured"
	ErrCodePromisePanicked     = "eventbus.promise_panicked"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrInvalidArgument     = Code(ErrCodeInvalidArgument)
	ErrNilHandler          = Code(ErrCodeNilHandler)
	ErrBusClosed           = Code(ErrCodeBusClosed)
	ErrSchedulerStopped    = Code(ErrCodeSchedulerStopped)
	ErrPostFailed          = Code(ErrCodePostFailed)
	ErrSerializationFailed = Code(ErrCodeSerializationFailed)
	ErrSinkNotConfigured   = Code(ErrCodeSinkNotConfigured)
	ErrPromisePanicked     = Code(ErrCodePromisePanicked)
)
