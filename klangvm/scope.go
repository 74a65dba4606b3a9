package klangvm

type Scope struct {
	Vars  map[string]Value
	Stack []Value
}

func NewScope() *Scope {
	return &Scope{
		Vars: make(map[string]Value),
	}
}

func (s *Scope) push(v Value) {
	s.Stack = append(s.Stack, v)
}

func (s *Scope) pop() (Value, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	v := s.Stack[len(s.Stack)-1]
	s.Stack[len(s.Stack)-1] = nil
	s.Stack = s.Stack[:len(s.Stack)-1]
	return v, true
}

func (s *Scope) peek() (Value, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	return s.Stack[len(s.Stack)-1], true
}
