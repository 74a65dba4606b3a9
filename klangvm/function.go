package klangvm

type Function struct {
	Name   string
	Params []string
	// body followed by EndFn, sharing the pools of the defining chunk
	Chunk *Chunk
}
