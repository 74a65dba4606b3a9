package logs

// Span identifies one program run or one REPL input.
type Span string

type spanKey struct{}

var SpanKey = spanKey{}
