package lang

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'minimini.lang'
func tracer() tracing.Trace {
	return tracing.Select("minimini.lang")
}
