package metrics

const (
	// LabelMethod is the Prometheus label name for HTTP method.
	LabelMethod = "method"

	// LabelStatusCode is the Prometheus label name for HTTP status codes.
	LabelStatusCode = "code"

	// LabelHandler is the Prometheus label name for the name of an HTTP handler.
	LabelHandler = "handler"

	// LabelStatus is the Prometheus label name for the status of a process
	// such as "success" or "error".
	LabelStatus = "status"

	// LabelResult is the Prometheus label name for the result of a cache
	// lookup, "hit" or "miss".
	LabelResult = "result"

	// LabelEvent is used by InstrumentHTTP() to describe the different stages of
	// an HTTP connection (DNS resolution, TLS handshake, etc).
	LabelEvent = "event"
)

// Values of LabelStatus.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
