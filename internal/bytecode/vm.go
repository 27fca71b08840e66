package bytecode

import (
	"math"

	"github.com/cwbudde/luabc/internal/diag"
	"github.com/cwbudde/luabc/internal/token"
)

// frame is a function call's activation record: its parameter/local slots
// and the code index of the FuncCall instruction that invoked it, so
// Return can resume the caller at the right point.
type frame struct {
	locals     []Value
	returnAddr int
}

// VM executes a compiled Program against an operand stack and a global
// environment. State is p (program counter), the stack, the call-frame
// stack, and the globals map — nothing else persists across Run.
type VM struct {
	prog    *Program
	stack   []Value
	globals map[string]Value
	frames  []*frame
	p       int

	source string
	file   string
}

// NewVM creates a VM ready to execute prog. source/file are only used to
// render runtime diagnostics.
func NewVM(prog *Program, source, file string) *VM {
	return &VM{
		prog:    prog,
		globals: map[string]Value{},
		source:  source,
		file:    file,
	}
}

func (vm *VM) errorf(msg string, args ...any) error {
	return diag.New(diag.Runtime, token.Position{}, vm.source, vm.file, msg, args...)
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (Value, error) {
	if len(vm.stack) == 0 {
		return Value{}, vm.errorf("stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) popNumber() (float64, error) {
	v, err := vm.pop()
	if err != nil {
		return 0, err
	}
	if v.Kind != KindNumber {
		return 0, vm.errorf("attempt to perform arithmetic on a %s value", v.TypeName())
	}
	return v.Num, nil
}

func concatOperand(v Value) (string, bool) {
	switch v.Kind {
	case KindString:
		return v.Str, true
	case KindNumber:
		return formatNumber(v.Num), true
	default:
		return "", false
	}
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNumber:
		return a.Num == b.Num
	case KindString:
		return a.Str == b.Str
	case KindBoolean:
		return a.Bool == b.Bool
	case KindNil:
		return true
	case KindFunction:
		return a.Fn == b.Fn
	default:
		return false
	}
}

func (vm *VM) currentFrame() *frame {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1]
}

// Run executes the program to completion (the End instruction) or until a
// fatal error occurs, and returns the final global environment.
//
// The main loop fetches code[p], dispatches on its opcode, applies the
// action, and increments p — except on End, which halts immediately, and
// on jumps, which set p to the encoded target before the same generic
// increment runs. That increment is why jump targets are encoded as
// "one before" the intended resumption point (see internal/bytecode's
// compiler for the matching patch convention).
func (vm *VM) Run() (map[string]Value, error) {
	for {
		if vm.p < 0 || vm.p >= len(vm.prog.Code) {
			return nil, vm.errorf("program counter %d out of range", vm.p)
		}
		inst := vm.prog.Code[vm.p]

		switch inst.Op {
		case OpEnd:
			return vm.globals, nil

		case OpLoadNumber:
			vm.push(Number(vm.prog.Numbers[inst.Arg]))
		case OpLoadString:
			vm.push(Str(vm.prog.Strings[inst.Arg]))
		case OpLoadTrue:
			vm.push(Bool(true))
		case OpLoadFalse:
			vm.push(Bool(false))
		case OpLoadNil:
			vm.push(Nil())

		case OpLoadGlob:
			name := vm.prog.Idents[inst.Arg]
			v, ok := vm.globals[name]
			if !ok {
				return nil, vm.errorf("undefined global '%s'", name)
			}
			vm.push(v)
		case OpStoreGlob:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.globals[vm.prog.Idents[inst.Arg]] = v

		case OpLoadLocal:
			f := vm.currentFrame()
			if f == nil || inst.Arg < 0 || inst.Arg >= len(f.locals) {
				return nil, vm.errorf("invalid local slot %d", inst.Arg)
			}
			vm.push(f.locals[inst.Arg])
		case OpStoreLocal:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			f := vm.currentFrame()
			if f == nil || inst.Arg < 0 || inst.Arg >= len(f.locals) {
				return nil, vm.errorf("invalid local slot %d", inst.Arg)
			}
			f.locals[inst.Arg] = v

		case OpUnaryNot:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.push(Bool(!v.Truthy()))
		case OpUnaryMinus:
			n, err := vm.popNumber()
			if err != nil {
				return nil, err
			}
			vm.push(Number(-n))
		case OpUnaryLen:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			if v.Kind != KindString {
				return nil, vm.errorf("attempt to get length of a %s value", v.TypeName())
			}
			vm.push(Number(float64(len([]rune(v.Str)))))

		case OpBinAdd:
			if err := vm.arith(func(l, r float64) float64 { return l + r }); err != nil {
				return nil, err
			}
		case OpBinMinus:
			if err := vm.arith(func(l, r float64) float64 { return l - r }); err != nil {
				return nil, err
			}
		case OpBinMul:
			if err := vm.arith(func(l, r float64) float64 { return l * r }); err != nil {
				return nil, err
			}
		case OpBinRealDiv:
			if err := vm.arith(func(l, r float64) float64 { return l / r }); err != nil {
				return nil, err
			}
		case OpBinIntDiv:
			if err := vm.arith(floorDiv); err != nil {
				return nil, err
			}
		case OpBinMod:
			if err := vm.arith(func(l, r float64) float64 {
				m := l - floorDiv(l, r)*r
				return m
			}); err != nil {
				return nil, err
			}
		case OpBinPow:
			if err := vm.arith(power); err != nil {
				return nil, err
			}
		case OpBinConcat:
			if err := vm.concat(); err != nil {
				return nil, err
			}
		case OpBinLt:
			if err := vm.compare(true); err != nil {
				return nil, err
			}
		case OpBinLe:
			if err := vm.compare(false); err != nil {
				return nil, err
			}
		case OpBinEq:
			r, err := vm.pop()
			if err != nil {
				return nil, err
			}
			l, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.push(Bool(valuesEqual(l, r)))
		case OpBinAnd:
			r, err := vm.pop()
			if err != nil {
				return nil, err
			}
			l, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.push(Bool(l.Truthy() && r.Truthy()))
		case OpBinOr:
			r, err := vm.pop()
			if err != nil {
				return nil, err
			}
			l, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.push(Bool(l.Truthy() || r.Truthy()))

		case OpJumpAbsoluteIfFalse:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				if err := vm.checkJumpTarget(inst.Arg); err != nil {
					return nil, err
				}
				vm.p = inst.Arg
			}
		case OpJumpAbsolute:
			if err := vm.checkJumpTarget(inst.Arg); err != nil {
				return nil, err
			}
			vm.p = inst.Arg

		case OpPop:
			if _, err := vm.pop(); err != nil {
				return nil, err
			}

		case OpFuncDecl:
			vm.push(Function(inst.Arg))

		case OpFuncCall:
			if err := vm.call(vm.prog.Idents[inst.Arg]); err != nil {
				return nil, err
			}

		case OpReturn:
			retVal, err := vm.pop()
			if err != nil {
				return nil, err
			}
			if len(vm.frames) == 0 {
				return nil, vm.errorf("return statement outside of a function call")
			}
			f := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.push(retVal)
			vm.p = f.returnAddr

		default:
			return nil, vm.errorf("unimplemented opcode %s", inst.Op)
		}

		vm.p++
	}
}

// checkJumpTarget validates invariant 5 from the spec's testable
// properties: every jump's arg must be a valid code index. Because of the
// off-by-one convention the jump sets p to arg and the caller's generic
// increment moves past it, so arg itself must still be in range here.
func (vm *VM) checkJumpTarget(target int) error {
	if target < 0 || target >= len(vm.prog.Code) {
		return vm.errorf("jump target %d out of range", target)
	}
	return nil
}

func (vm *VM) arith(op func(l, r float64) float64) error {
	r, err := vm.popNumber()
	if err != nil {
		return err
	}
	l, err := vm.popNumber()
	if err != nil {
		return err
	}
	vm.push(Number(op(l, r)))
	return nil
}

func floorDiv(l, r float64) float64 {
	return math.Floor(l / r)
}

func power(base, exp float64) float64 {
	return math.Pow(base, exp)
}

func (vm *VM) concat() error {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}
	ls, ok := concatOperand(l)
	if !ok {
		return vm.errorf("attempt to concatenate a %s value", l.TypeName())
	}
	rs, ok := concatOperand(r)
	if !ok {
		return vm.errorf("attempt to concatenate a %s value", r.TypeName())
	}
	vm.push(Str(ls + rs))
	return nil
}

func (vm *VM) compare(strict bool) error {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}
	switch {
	case l.Kind == KindNumber && r.Kind == KindNumber:
		if strict {
			vm.push(Bool(l.Num < r.Num))
		} else {
			vm.push(Bool(l.Num <= r.Num))
		}
	case l.Kind == KindString && r.Kind == KindString:
		if strict {
			vm.push(Bool(l.Str < r.Str))
		} else {
			vm.push(Bool(l.Str <= r.Str))
		}
	default:
		return vm.errorf("attempt to compare %s with %s", l.TypeName(), r.TypeName())
	}
	return nil
}

// call implements FuncCall: look up name as a global, require it to be a
// Function value, pop exactly its declared arity of arguments into a new
// frame, and transfer control to its entry point. Setting p to entry-1
// relies on the same generic increment every other instruction does, so
// execution lands exactly on entry.
func (vm *VM) call(name string) error {
	fv, ok := vm.globals[name]
	if !ok {
		return vm.errorf("call to undefined function '%s'", name)
	}
	if fv.Kind != KindFunction {
		return vm.errorf("attempt to call a %s value", fv.TypeName())
	}
	if fv.Fn < 0 || fv.Fn >= len(vm.prog.Functions) {
		return vm.errorf("invalid function reference")
	}
	info := vm.prog.Functions[fv.Fn]

	args := make([]Value, info.Arity)
	for i := info.Arity - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}

	vm.frames = append(vm.frames, &frame{locals: args, returnAddr: vm.p})
	if err := vm.checkJumpTarget(info.Entry); err != nil {
		return err
	}
	vm.p = info.Entry - 1
	return nil
}
