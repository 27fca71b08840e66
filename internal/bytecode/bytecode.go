// Package bytecode defines the instruction set and compiled-program
// representation shared by the compiler and the virtual machine, and
// provides the compiler (compiler.go), the VM (vm.go), and a disassembler
// (disasm.go).
package bytecode

import "fmt"

// OpCode identifies a bytecode instruction.
type OpCode int

const (
	OpLoadNumber OpCode = iota
	OpLoadString
	OpLoadTrue
	OpLoadFalse
	OpLoadNil
	OpLoadGlob
	OpStoreGlob
	OpLoadLocal
	OpStoreLocal

	OpUnaryNot
	OpUnaryMinus
	OpUnaryLen

	OpBinAdd
	OpBinMinus
	OpBinMul
	OpBinRealDiv
	OpBinIntDiv
	OpBinPow
	OpBinMod
	OpBinConcat
	OpBinLt
	OpBinLe
	OpBinEq
	OpBinAnd
	OpBinOr

	OpJumpAbsoluteIfFalse
	OpJumpAbsolute

	OpPop

	OpFuncDecl
	OpFuncCall
	OpReturn

	OpEnd
)

var opNames = map[OpCode]string{
	OpLoadNumber: "LoadNumber", OpLoadString: "LoadString",
	OpLoadTrue: "LoadTrue", OpLoadFalse: "LoadFalse", OpLoadNil: "LoadNil",
	OpLoadGlob: "LoadGlob", OpStoreGlob: "StoreGlob",
	OpLoadLocal: "LoadLocal", OpStoreLocal: "StoreLocal",
	OpUnaryNot: "UnaryNot", OpUnaryMinus: "UnaryMinus", OpUnaryLen: "UnaryLen",
	OpBinAdd: "BinAdd", OpBinMinus: "BinMinus", OpBinMul: "BinMul",
	OpBinRealDiv: "BinRealDiv", OpBinIntDiv: "BinIntDiv", OpBinPow: "BinPow",
	OpBinMod: "BinMod", OpBinConcat: "BinConcat",
	OpBinLt: "BinLt", OpBinLe: "BinLe", OpBinEq: "BinEq",
	OpBinAnd: "BinAnd", OpBinOr: "BinOr",
	OpJumpAbsoluteIfFalse: "JumpAbsoluteIfFalse", OpJumpAbsolute: "JumpAbsolute",
	OpPop:      "Pop",
	OpFuncDecl: "FuncDecl", OpFuncCall: "FuncCall", OpReturn: "Return",
	OpEnd: "End",
}

func (op OpCode) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("OpCode(%d)", int(op))
}

// Instruction is a single (opcode, arg) pair. arg is ignored when not
// meaningful for the opcode, by convention 0.
type Instruction struct {
	Op  OpCode
	Arg int
}

// ValueKind tags the dynamic type of a runtime Value.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindString
	KindBoolean
	KindNil
	KindFunction
)

// Value is the tagged union every runtime value and constant-pool entry
// belongs to.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
	Fn   int // index into Program.Functions, valid when Kind == KindFunction
}

func Number(n float64) Value  { return Value{Kind: KindNumber, Num: n} }
func Str(s string) Value      { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value       { return Value{Kind: KindBoolean, Bool: b} }
func Nil() Value              { return Value{Kind: KindNil} }
func Function(idx int) Value  { return Value{Kind: KindFunction, Fn: idx} }

// Truthy implements the family's falsy rule: only Boolean(false) and Nil
// are falsy, everything else — including Number(0) and "" — is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBoolean:
		return v.Bool
	case KindNil:
		return false
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		return v.Str
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNil:
		return "nil"
	case KindFunction:
		return fmt.Sprintf("<function #%d>", v.Fn)
	default:
		return "<?>"
	}
}

// TypeName names the dynamic type for error messages.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindNil:
		return "nil"
	case KindFunction:
		return "function"
	default:
		return "?"
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

// FunctionInfo describes one compiled function: its declared arity and the
// code offset its body starts at. Indexed by the Functions pool, in
// declaration order.
type FunctionInfo struct {
	Name   string
	Arity  int
	Entry  int
}

// Program is the output of compilation: a flat instruction stream, the
// interned Numbers/Strings/Idents pools, and the Functions table (one entry
// per declaration). Pool ordering is insertion order: the k-th distinct value
// first referenced in source order occupies index k.
type Program struct {
	Code      []Instruction
	Numbers   []float64
	Strings   []string
	Idents    []string
	Functions []FunctionInfo
}
