package codegen

import "github.com/mgtm98/ToyCComp/internal/diag"

// NumScratch is the size of the fixed scratch register pool per §4.4: the
// callee-saved x86-64 registers r12-r15.
const NumScratch = 4

// Accumulator is the sentinel handle for rax, the dedicated return-value
// register. It is never allocated from the scratch pool.
const Accumulator = -1

// regNames maps a scratch slot to its four width aliases, 64/32/16/8-bit,
// in that order.
var regNames = [NumScratch][4]string{
	{"r12", "r12d", "r12w", "r12b"},
	{"r13", "r13d", "r13w", "r13b"},
	{"r14", "r14d", "r14w", "r14b"},
	{"r15", "r15d", "r15w", "r15b"},
}

var accNames = [4]string{"rax", "eax", "ax", "al"}

// widthIndex converts a bit width into the regNames column index.
func widthIndex(width int) int {
	switch width {
	case 64:
		return 0
	case 32:
		return 1
	case 16:
		return 2
	case 8:
		return 3
	default:
		diag.Fatal(diag.CG, 0, "unsupported register width %d", width)
		panic("unreachable")
	}
}

// RegName returns the width-aliased assembly name for a register handle:
// Accumulator for rax, or 0-3 for a scratch slot.
func RegName(handle int, width int) string {
	idx := widthIndex(width)
	if handle == Accumulator {
		return accNames[idx]
	}
	return regNames[handle][idx]
}

// RegPool is the four-slot scratch register allocator. Allocation always
// returns the lowest-index free slot; exhaustion is fatal. Freeing an
// already-free slot is fatal, since that indicates a compiler bug (§4.4).
type RegPool struct {
	free [NumScratch]bool
}

// NewRegPool returns a pool with all four slots free.
func NewRegPool() *RegPool {
	p := &RegPool{}
	for i := range p.free {
		p.free[i] = true
	}
	return p
}

// Alloc returns the lowest-index free slot, fatal if the pool is exhausted.
func (p *RegPool) Alloc(line int) int {
	for i, free := range p.free {
		if free {
			p.free[i] = false
			return i
		}
	}
	diag.Fatal(diag.CG, line, "out of scratch registers")
	panic("unreachable")
}

// Free releases handle back to the pool. Fatal on double-free.
func (p *RegPool) Free(line int, handle int) {
	if handle == Accumulator {
		return
	}
	if p.free[handle] {
		diag.Fatal(diag.CG, line, "double free of register slot %d", handle)
	}
	p.free[handle] = true
}

// AllFree reports whether every slot is free, the invariant required at
// every statement boundary (§8).
func (p *RegPool) AllFree() bool {
	for _, free := range p.free {
		if !free {
			return false
		}
	}
	return true
}
