package object

// ObjectKind represents the type of an object using an enum for faster comparisons.
type ObjectKind uint8

const (
	KindInvalid ObjectKind = iota
	KindReal
	KindComplex
	KindBoolean
	KindString
	KindClosure
	KindBuiltin
)

func (k ObjectKind) String() string {
	switch k {
	case KindReal:
		return "REAL"
	case KindComplex:
		return "COMPLEX"
	case KindBoolean:
		return "BOOLEAN"
	case KindString:
		return "STRING"
	case KindClosure:
		return "CLOSURE"
	case KindBuiltin:
		return "BUILTIN"
	default:
		return "INVALID"
	}
}

// IsNumeric reports whether values of this kind take part in arithmetic.
func (k ObjectKind) IsNumeric() bool {
	return k == KindReal || k == KindComplex
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}
