package tracing

// Config controls how trace and request ids are taken from incoming
// requests.
type Config struct {
	// TraceHeader overrides the default CH-Trace-Id header.
	TraceHeader string `conf:"trace_header" yaml:"trace_header" json:"trace_header"`

	// ExtraTraceHeaders are additional headers probed for a trace id.
	ExtraTraceHeaders []string `conf:"extra_trace_headers" yaml:"extra_trace_headers" json:"extra_trace_headers"`
}

// HeaderName returns the effective trace header name.
func (c Config) HeaderName() string {
	if c.TraceHeader != "" {
		return c.TraceHeader
	}

	return "CH-Trace-Id"
}
