package record

// Parser turns raw army list text into a FlatRecord. Implementations live
// outside this module and should wrap ErrParse on failure.
type Parser interface {
	Parse(raw string) (FlatRecord, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(raw string) (FlatRecord, error)

// Parse calls f(raw).
func (f ParserFunc) Parse(raw string) (FlatRecord, error) {
	return f(raw)
}
