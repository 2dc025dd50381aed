package symbols

import "fmt"

type Type string

const (
	Number Type = "NUMBER"
	String Type = "STRING"
)

// Variable is a declared identifier and the type its last assignment gave it.
type Variable struct {
	Identifier string
	Type       Type
}

func (v Variable) String() string {
	return fmt.Sprintf("%s:%s", v.Identifier, v.Type)
}
