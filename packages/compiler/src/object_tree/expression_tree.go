package object_tree

// Expression is a bound expression. The set of implementations is closed.
type Expression interface {
	isExpression()
}

// Invalid is an expression that failed to resolve upstream.
type Invalid struct{}

// StringLiteral is a string constant.
type StringLiteral struct {
	Value string
}

// NumberLiteral is a numeric constant with an optional unit (px, ms, %...).
type NumberLiteral struct {
	Value float64
	Unit  string
}

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	Value bool
}

// PropertyReference reads the property named by Ref.
type PropertyReference struct {
	Ref NamedReference
}

// FunctionReference names a builtin or callback function.
type FunctionReference struct {
	Name string
}

// BinaryExpression applies Op to LHS and RHS.
type BinaryExpression struct {
	LHS Expression
	RHS Expression
	Op  string
}

// UnaryOp applies Op to Sub.
type UnaryOp struct {
	Sub Expression
	Op  string
}

// Condition is a ternary `if cond: a else b`.
type Condition struct {
	Condition Expression
	TrueExpr  Expression
	FalseExpr Expression
}

// FunctionCall calls Function with Arguments.
type FunctionCall struct {
	Function  Expression
	Arguments []Expression
}

// ObjectAccess reads field Name of Base.
type ObjectAccess struct {
	Base Expression
	Name string
}

// Array is an array literal.
type Array struct {
	Values []Expression
}

// CodeBlock evaluates its sub-expressions in order.
type CodeBlock struct {
	Statements []Expression
}

// SelfAssignment assigns RHS to LHS, optionally combined with Op (`+=`...).
type SelfAssignment struct {
	LHS Expression
	RHS Expression
	Op  string
}

// Cast converts From to the type named To.
type Cast struct {
	From Expression
	To   string
}

func (*Invalid) isExpression()           {}
func (*StringLiteral) isExpression()     {}
func (*NumberLiteral) isExpression()     {}
func (*BoolLiteral) isExpression()       {}
func (*PropertyReference) isExpression() {}
func (*FunctionReference) isExpression() {}
func (*BinaryExpression) isExpression()  {}
func (*UnaryOp) isExpression()           {}
func (*Condition) isExpression()         {}
func (*FunctionCall) isExpression()      {}
func (*ObjectAccess) isExpression()      {}
func (*Array) isExpression()             {}
func (*CodeBlock) isExpression()         {}
func (*SelfAssignment) isExpression()    {}
func (*Cast) isExpression()              {}

// NewPropertyReference creates an expression reading element.name.
func NewPropertyReference(element *Element, name string) *PropertyReference {
	return &PropertyReference{Ref: NewNamedReference(element, name)}
}

// VisitSubExpressions calls vis with a pointer to every direct sub-expression slot of
// expr, so vis may replace it.
func VisitSubExpressions(expr Expression, vis func(*Expression)) {
	switch e := expr.(type) {
	case *BinaryExpression:
		vis(&e.LHS)
		vis(&e.RHS)
	case *UnaryOp:
		vis(&e.Sub)
	case *Condition:
		vis(&e.Condition)
		vis(&e.TrueExpr)
		if e.FalseExpr != nil {
			vis(&e.FalseExpr)
		}
	case *FunctionCall:
		vis(&e.Function)
		for i := range e.Arguments {
			vis(&e.Arguments[i])
		}
	case *ObjectAccess:
		vis(&e.Base)
	case *Array:
		for i := range e.Values {
			vis(&e.Values[i])
		}
	case *CodeBlock:
		for i := range e.Statements {
			vis(&e.Statements[i])
		}
	case *SelfAssignment:
		vis(&e.LHS)
		vis(&e.RHS)
	case *Cast:
		vis(&e.From)
	}
	// Literals, references and Invalid have no sub-expressions.
}
