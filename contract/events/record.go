package events

// TriggerType names the dispatch strategy that produced a LogRecord.
type TriggerType string

const (
	TriggerPlain   TriggerType = "trigger"
	TriggerFirst   TriggerType = "triggerFirst"
	TriggerResults TriggerType = "triggerResults"
	TriggerThen    TriggerType = "triggerThen"
)

// LogRecord is built once per dispatch call and handed to a Sink. It is never retained by the bus.
//
// Params holds a shallow copy of every positional argument taken when the call was made.
// Results is only set by strategies that post after invoking handlers.
type LogRecord struct {
	BusName     string      `json:"busName"`
	TriggerType TriggerType `json:"triggerType"`
	EventName   string      `json:"eventName"`
	Params      []any       `json:"params"`
	Results     any         `json:"results,omitempty"`
}

// Transport header keys set by broker sinks.
const (
	HeaderLevel       = "x-log-level"
	HeaderBusName     = "x-bus-name"
	HeaderTriggerType = "x-trigger-type"
	HeaderEventName   = "x-event-name"
)

// Headers returns the transport headers describing rec posted at level.
func (r LogRecord) Headers(level string) map[string]string {
	return map[string]string{
		HeaderLevel:       level,
		HeaderBusName:     r.BusName,
		HeaderTriggerType: string(r.TriggerType),
		HeaderEventName:   r.EventName,
	}
}
