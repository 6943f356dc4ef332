package vm

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'minimini.vm'
func tracer() tracing.Trace {
	return tracing.Select("minimini.vm")
}
