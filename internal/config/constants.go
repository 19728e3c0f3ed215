package config

const SourceFileExt = ".ruchy"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".ruchy", ".rhy"}

// Version is reported by `ruchy version` and the REPL banner.
const Version = "0.9.0"

// Evaluation limits. Each nested Eval call counts against MaxEvalDepth and
// each function invocation against MaxCallDepth; exceeding either raises a
// StackOverflow error instead of crashing the host.
const (
	DefaultMaxEvalDepth = 20000
	DefaultMaxCallDepth = 2000
	// DefaultStepBudget of 0 means unlimited.
	DefaultStepBudget = 0
	// DefaultMaxCollectionSize bounds repeated strings and arrays.
	DefaultMaxCollectionSize = 1 << 24
)

// Built-in function names
const (
	PrintFuncName     = "print"
	PrintlnFuncName   = "println"
	EprintFuncName    = "eprint"
	EprintlnFuncName  = "eprintln"
	DbgFuncName       = "dbg"
	LenFuncName       = "len"
	TypeOfFuncName    = "type_of"
	ToStringFuncName  = "to_string"
	RangeFuncName     = "range"
	AssertFuncName    = "assert"
	AssertEqFuncName  = "assert_eq"
	IsTTYFuncName     = "is_tty"
	YamlParseFuncName = "yaml_parse"
	YamlStringifyName = "yaml_stringify"
	JsonParseFuncName = "json_parse"
	JsonStringifyName = "json_stringify"
)

// Built-in type and constructor names
const (
	IntTypeName      = "i64"
	FloatTypeName    = "f64"
	BoolTypeName     = "bool"
	StringTypeName   = "String"
	UnitTypeName     = "()"
	ArrayTypeName    = "Array"
	TupleTypeName    = "Tuple"
	ObjectTypeName   = "Object"
	RangeTypeName    = "Range"
	FunctionTypeName = "Function"
	OptionTypeName   = "Option"
	ResultTypeName   = "Result"
	ErrorTypeName    = "Error"
	SomeCtorName     = "Some"
	NoneCtorName     = "None"
	OkCtorName       = "Ok"
	ErrCtorName      = "Err"
)
