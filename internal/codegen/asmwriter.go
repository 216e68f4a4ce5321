package codegen

import (
	"bufio"
	"fmt"
	"io"
)

// bssEntry is one reservation in the final .bss section.
type bssEntry struct {
	name  string
	width int // bit width of one element: 8, 16, 32, or 64
	nelem int
}

// dataEntry is one initialized value or byte blob in the final .data
// section.
type dataEntry struct {
	name  string
	bytes []byte // used when raw is true (string literals, byte blobs)
	value int64  // used when raw is false (a single scalar initializer)
	width int
	raw   bool
}

// Writer is ToyCComp's assembly emission surface (§4.4), grounded on the
// teacher's ygen/emit.go Emitter but rebuilt for Intel-syntax x86-64/NASM
// output instead of WUT-4 mnemonics. Per-function text is written directly
// to out as it's generated; .bss/.data entries are buffered and flushed by
// Wrapup once every declaration has been seen.
type Writer struct {
	out *bufio.Writer

	labelCount  int
	stringCount int

	bss  []bssEntry
	data []dataEntry

	seenNames map[string]bool
}

// NewWriter wraps w for buffered assembly output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w), seenNames: make(map[string]bool)}
}

// NewLabel mints a fresh label, unique within this Writer.
func (w *Writer) NewLabel(prefix string) string {
	label := fmt.Sprintf("L_%s%d", prefix, w.labelCount)
	w.labelCount++
	return label
}

func (w *Writer) Comment(format string, args ...interface{}) {
	fmt.Fprintf(w.out, "    ; %s\n", fmt.Sprintf(format, args...))
}

func (w *Writer) BlankLine() {
	fmt.Fprintln(w.out)
}

func (w *Writer) Raw(line string) {
	fmt.Fprintf(w.out, "    %s\n", line)
}

func (w *Writer) instr0(op string) {
	fmt.Fprintf(w.out, "    %s\n", op)
}

func (w *Writer) instr1(op, a string) {
	fmt.Fprintf(w.out, "    %s %s\n", op, a)
}

func (w *Writer) instr2(op, a, b string) {
	fmt.Fprintf(w.out, "    %s %s, %s\n", op, a, b)
}

// Label emits a bare assembly label.
func (w *Writer) Label(name string) {
	fmt.Fprintf(w.out, "%s:\n", name)
}

// --- Register moves and arithmetic ---------------------------------------

// InitImm loads an immediate value into reg at the given width, zero-
// extending the register's full width first. A literal's own type may be
// narrower than the width it's later consumed at (a char literal added to
// an int, or passed as a 64-bit call argument), so the upper bits must never
// be left undefined regardless of the width requested here.
func (w *Writer) InitImm(reg int, value int64, width int) {
	if width != 64 {
		w.instr2("xor", RegName(reg, 64), RegName(reg, 64))
	}
	w.instr2("mov", RegName(reg, width), fmt.Sprintf("%d", value))
}

// MovReg moves src into dst at the given width.
func (w *Writer) MovReg(dst, src int, width int) {
	w.instr2("mov", RegName(dst, width), RegName(src, width))
}

func (w *Writer) Add(dst, src int, width int) {
	w.instr2("add", RegName(dst, width), RegName(src, width))
}

func (w *Writer) Sub(dst, src int, width int) {
	w.instr2("sub", RegName(dst, width), RegName(src, width))
}

// Mul emits a two-operand imul. x86-64 has no 8-bit two-operand imul
// encoding, so a char-width multiply is promoted to the 16-bit register
// alias; InitImm's zero-extension guarantees the upper bits are already
// correct at that width.
func (w *Writer) Mul(dst, src int, width int) {
	if width == 8 {
		width = 16
	}
	w.instr2("imul", RegName(dst, width), RegName(src, width))
}

// Div emits a signed division of dst by src at the given width, leaving the
// quotient in dst. It sign-extends dst into rdx:rax via cqo/cdq/cwd
// (width-dependent) and routes through rax/rdx as the ISA requires,
// restoring the result into dst's own slot afterward. A char-width divide
// is promoted to the 16-bit aliases, as in Mul, since the byte form of idiv
// takes its dividend from all of ax.
func (w *Writer) Div(dst, src int, width int) {
	if width == 8 {
		width = 16
	}
	w.MovReg(Accumulator, dst, width)
	switch width {
	case 64:
		w.instr0("cqo")
	case 32:
		w.instr0("cdq")
	default:
		w.instr0("cwd")
	}
	w.instr1("idiv", RegName(src, width))
	w.MovReg(dst, Accumulator, width)
}

// Sll shifts reg left by the immediate k bits.
func (w *Writer) Sll(reg int, k int, width int) {
	w.instr2("shl", RegName(reg, width), fmt.Sprintf("%d", k))
}

var setccMnemonic = map[string]string{
	"EQ": "sete", "NE": "setne", "GT": "setg", "GE": "setge", "LT": "setl", "LE": "setle",
}

// SetCC emits `setCC reg8` followed by a movzx widening reg8 back up to
// width, per the comparison lowering in §4.4.
func (w *Writer) SetCC(cc string, reg int, width int) {
	mnem, ok := setccMnemonic[cc]
	if !ok {
		mnem = "sete"
	}
	w.instr1(mnem, RegName(reg, 8))
	if width != 8 {
		w.instr2("movzx", RegName(reg, width), RegName(reg, 8))
	}
}

func (w *Writer) Cmp(a, b int, width int) {
	w.instr2("cmp", RegName(a, width), RegName(b, width))
}

// --- Control flow -----------------------------------------------------------

func (w *Writer) Jmp(label string) {
	w.instr1("jmp", label)
}

// JmpEq/JmpNe compare reg against an immediate and branch on (in)equality.
func (w *Writer) JmpEq(reg int, imm int64, width int, label string) {
	w.instr2("cmp", RegName(reg, width), fmt.Sprintf("%d", imm))
	w.instr1("je", label)
}

func (w *Writer) JmpNe(reg int, imm int64, width int, label string) {
	w.instr2("cmp", RegName(reg, width), fmt.Sprintf("%d", imm))
	w.instr1("jne", label)
}

// --- Memory, addresses, and globals --------------------------------------

// AddressOf loads the effective address of name into dst via lea.
func (w *Writer) AddressOf(dst int, name string) {
	w.instr2("lea", RegName(dst, 64), "["+name+"]")
}

// LoadMem loads the value addressed by addrReg into dst, zero-extending
// narrower widths (a 32-bit mov clears the upper half by itself).
func (w *Writer) LoadMem(dst, addrReg int, width int) {
	if width == 64 {
		w.instr2("mov", RegName(dst, 64), "["+RegName(addrReg, 64)+"]")
		return
	}
	if width == 32 {
		w.instr2("mov", RegName(dst, 32), sizedMemOperand(addrReg, 32))
		return
	}
	w.instr2("movzx", RegName(dst, 64), sizedMemOperand(addrReg, width))
}

// StoreMem stores valueReg into the memory addressed by addrReg.
func (w *Writer) StoreMem(addrReg, valueReg int, width int) {
	w.instr2("mov", sizedMemOperand(addrReg, width), RegName(valueReg, width))
}

func sizedMemOperand(addrReg int, width int) string {
	var prefix string
	switch width {
	case 64:
		prefix = "qword"
	case 32:
		prefix = "dword"
	case 16:
		prefix = "word"
	default:
		prefix = "byte"
	}
	return fmt.Sprintf("%s [%s]", prefix, RegName(addrReg, 64))
}

// AddGlobalVar records a .bss reservation for a global of the given element
// width and count. Fatal (via the caller, which owns diagnostics) on a
// duplicate name is enforced by the symbol table, not here; Writer only
// guards against emitting the same .bss name twice.
func (w *Writer) AddGlobalVar(name string, width int, nelem int) {
	if w.seenNames[name] {
		return
	}
	w.seenNames[name] = true
	w.bss = append(w.bss, bssEntry{name: name, width: width, nelem: nelem})
}

// SetGlobalInitial records name as a .data entry with a scalar compile-time
// constant initializer, in place of a .bss reservation (the caller records
// one or the other, never both).
func (w *Writer) SetGlobalInitial(name string, value int64, width int) {
	w.data = append(w.data, dataEntry{name: name, value: value, width: width})
}

// SetGlobal stores valueReg into the named global at runtime.
func (w *Writer) SetGlobal(name string, valueReg int, width int) {
	w.instr2("mov", sizedDirectOperand(name, width), RegName(valueReg, width))
}

// StoreArgToGlobal stores the incoming rdi argument into name at the call's
// width, used by a function prologue to spill its single formal parameter
// into its .bss slot (ToyCComp has no stack frames for user data — a
// parameter is just a global the prologue initializes).
func (w *Writer) StoreArgToGlobal(name string, width int) {
	argAlias := map[int]string{64: "rdi", 32: "edi", 16: "di", 8: "dil"}[width]
	w.instr2("mov", sizedDirectOperand(name, width), argAlias)
}

// GetGlobal loads name into dst, zero-extended (a 32-bit mov clears the
// upper half by itself).
func (w *Writer) GetGlobal(dst int, name string, width int) {
	if width == 64 {
		w.instr2("mov", RegName(dst, 64), "["+name+"]")
		return
	}
	if width == 32 {
		w.instr2("mov", RegName(dst, 32), sizedDirectOperand(name, 32))
		return
	}
	w.instr2("movzx", RegName(dst, 64), sizedDirectOperand(name, width))
}

func sizedDirectOperand(name string, width int) string {
	var prefix string
	switch width {
	case 64:
		prefix = "qword"
	case 32:
		prefix = "dword"
	case 16:
		prefix = "word"
	default:
		prefix = "byte"
	}
	return fmt.Sprintf("%s [%s]", prefix, name)
}

// --- Functions --------------------------------------------------------------

// FuncPrologue emits the section header and standard stack-frame entry for
// a function.
func (w *Writer) FuncPrologue(name string) {
	fmt.Fprintln(w.out, "section .text")
	fmt.Fprintf(w.out, "global %s\n", name)
	fmt.Fprintf(w.out, "%s:\n", name)
	w.instr1("push", "rbp")
	w.instr2("mov", "rbp", "rsp")
}

// FuncEpilogue emits the standard stack-frame exit.
func (w *Writer) FuncEpilogue() {
	w.instr1("pop", "rbp")
	w.instr0("ret")
}

// FuncCall emits a call, placing argReg (if not noArg) into rdi first, and
// copying rax into resultReg if needReturn is set.
func (w *Writer) FuncCall(name string, argReg int, needReturn bool, resultReg int, resultWidth int) {
	if argReg != noArg {
		w.instr2("mov", "rdi", RegName(argReg, 64))
	}
	w.instr1("call", name)
	if needReturn {
		w.MovReg(resultReg, Accumulator, resultWidth)
	}
}

// noArg signals FuncCall that the callee takes no argument.
const noArg = -2

// FuncReturn moves valueReg into the size-matching alias of rax.
func (w *Writer) FuncReturn(valueReg int, width int) {
	if valueReg != Accumulator {
		w.MovReg(Accumulator, valueReg, width)
	}
}

// --- String literals and data -----------------------------------------------

// GenerateStringLiteral mints a fresh .data label for bytes and buffers the
// entry for Wrapup.
func (w *Writer) GenerateStringLiteral(bytes []byte) string {
	name := fmt.Sprintf("L_str%d", w.stringCount)
	w.stringCount++
	w.data = append(w.data, dataEntry{name: name, bytes: bytes, raw: true})
	return name
}

// --- Wrapup -----------------------------------------------------------------

var externs = []string{"print", "print_char", "print_str", "print_ln"}

// Wrapup flushes the .bss reservations, the .data initialized values and
// string literals, the runtime extern declarations, and the GNU-stack note,
// then flushes the underlying writer.
func (w *Writer) Wrapup() {
	fmt.Fprintln(w.out)
	for _, ext := range externs {
		fmt.Fprintf(w.out, "extern %s\n", ext)
	}

	if len(w.bss) > 0 {
		fmt.Fprintln(w.out)
		fmt.Fprintln(w.out, "section .bss")
		for _, e := range w.bss {
			fmt.Fprintf(w.out, "%s: %s %d\n", e.name, bssDirective(e.width), e.nelem)
		}
	}

	if len(w.data) > 0 {
		fmt.Fprintln(w.out)
		fmt.Fprintln(w.out, "section .data")
		for _, e := range w.data {
			if e.raw {
				fmt.Fprintf(w.out, "%s: db %s\n", e.name, byteList(e.bytes))
			} else {
				fmt.Fprintf(w.out, "%s: %s %d\n", e.name, dataDirective(e.width), e.value)
			}
		}
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "section .note.GNU-stack noalloc noexec nowrite progbits")
	w.out.Flush()
}

func bssDirective(width int) string {
	switch width {
	case 8:
		return "resb"
	case 16:
		return "resw"
	case 32:
		return "resd"
	default:
		return "resq"
	}
}

func dataDirective(width int) string {
	switch width {
	case 8:
		return "db"
	case 16:
		return "dw"
	case 32:
		return "dd"
	default:
		return "dq"
	}
}

func byteList(bytes []byte) string {
	if len(bytes) == 0 {
		return "0"
	}
	var out string
	for i, b := range bytes {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", b)
	}
	return out
}
