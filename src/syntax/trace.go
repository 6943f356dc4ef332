package syntax

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'minimini.syntax'
func tracer() tracing.Trace {
	return tracing.Select("minimini.syntax")
}
