package bytecode

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'minimini.bytecode'
func tracer() tracing.Trace {
	return tracing.Select("minimini.bytecode")
}
