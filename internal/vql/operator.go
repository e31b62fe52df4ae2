package vql

// Operator compares a record field against a condition value.
type Operator string

const (
	Eq        Operator = "eq"
	Ne        Operator = "ne"
	Gt        Operator = "gt"
	Gte       Operator = "gte"
	Lt        Operator = "lt"
	Lte       Operator = "lte"
	In        Operator = "in"
	Nin       Operator = "nin"
	Contains  Operator = "contains"
	NContains Operator = "ncontains"
	Exists    Operator = "exists"
	NExists   Operator = "nexists"
)

// Operators returns every supported operator in wire order.
func Operators() []Operator {
	return []Operator{Eq, Ne, Gt, Gte, Lt, Lte, In, Nin, Contains, NContains, Exists, NExists}
}

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case Eq, Ne, Gt, Gte, Lt, Lte, In, Nin, Contains, NContains, Exists, NExists:
		return true
	}
	return false
}

// TakesList reports whether the operator's value must be a list.
func (op Operator) TakesList() bool {
	return op == In || op == Nin
}

// Unary reports whether the operator ignores its value.
func (op Operator) Unary() bool {
	return op == Exists || op == NExists
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)
