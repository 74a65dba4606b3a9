package klangvm

type Frame struct {
	Fun      *Function
	Caller   *Chunk
	ReturnIP int
	// number of scopes live before the call opened its own
	Base int
}
