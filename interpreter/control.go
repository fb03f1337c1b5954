package interpreter

// controlReturn unwinds a Lox `return` statement up through nested
// blocks, ifs, and loops to the call that started executing the
// function body. It satisfies error so it can travel through the same
// error-returning execute/evaluate chain as a genuine runtime error;
// Call sites use errors.As to tell the two apart.
type controlReturn struct {
	Value Value
}

func (controlReturn) Error() string { return "return outside of a function call" }
