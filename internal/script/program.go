package script

import "fmt"

// InstructionType is the decoded opcode (including its type qualifier, so
// ADDII and ADDIF are distinct types).
type InstructionType int

const (
	InsNOP InstructionType = iota
	InsNOP2
	InsCPDOWNSP
	InsRSADDI
	InsRSADDF
	InsRSADDS
	InsRSADDO
	InsRSADDEFF
	InsRSADDEVT
	InsRSADDLOC
	InsRSADDTAL
	InsCPTOPSP
	InsCONSTI
	InsCONSTF
	InsCONSTS
	InsCONSTO
	InsACTION
	InsLOGANDII
	InsLOGORII
	InsINCORII
	InsEXCORII
	InsBOOLANDII
	InsEQUALII
	InsEQUALFF
	InsEQUALSS
	InsEQUALOO
	InsEQUALTT
	InsEQUALEFFEFF
	InsEQUALEVTEVT
	InsEQUALLOCLOC
	InsEQUALTALTAL
	InsNEQUALII
	InsNEQUALFF
	InsNEQUALSS
	InsNEQUALOO
	InsNEQUALTT
	InsNEQUALEFFEFF
	InsNEQUALEVTEVT
	InsNEQUALLOCLOC
	InsNEQUALTALTAL
	InsGEQII
	InsGEQFF
	InsGTII
	InsGTFF
	InsLTII
	InsLTFF
	InsLEQII
	InsLEQFF
	InsSHLEFTII
	InsSHRIGHTII
	InsUSHRIGHTII
	InsADDII
	InsADDIF
	InsADDFI
	InsADDFF
	InsADDSS
	InsADDVV
	InsSUBII
	InsSUBIF
	InsSUBFI
	InsSUBFF
	InsSUBVV
	InsMULII
	InsMULIF
	InsMULFI
	InsMULFF
	InsMULVF
	InsMULFV
	InsDIVII
	InsDIVIF
	InsDIVFI
	InsDIVFF
	InsDIVVF
	InsDIVFV
	InsMODII
	InsNEGI
	InsNEGF
	InsMOVSP
	InsJMP
	InsJSR
	InsJZ
	InsJNZ
	InsRETN
	InsDESTRUCT
	InsNOTI
	InsDECISP
	InsINCISP
	InsCPDOWNBP
	InsCPTOPBP
	InsDECIBP
	InsINCIBP
	InsSAVEBP
	InsRESTOREBP
	InsSTORESTATE
)

var instructionNames = map[InstructionType]string{
	InsNOP: "NOP", InsNOP2: "NOP2",
	InsCPDOWNSP: "CPDOWNSP", InsCPTOPSP: "CPTOPSP",
	InsRSADDI: "RSADDI", InsRSADDF: "RSADDF", InsRSADDS: "RSADDS", InsRSADDO: "RSADDO",
	InsRSADDEFF: "RSADDEFF", InsRSADDEVT: "RSADDEVT", InsRSADDLOC: "RSADDLOC", InsRSADDTAL: "RSADDTAL",
	InsCONSTI: "CONSTI", InsCONSTF: "CONSTF", InsCONSTS: "CONSTS", InsCONSTO: "CONSTO",
	InsACTION:   "ACTION",
	InsLOGANDII: "LOGANDII", InsLOGORII: "LOGORII", InsINCORII: "INCORII",
	InsEXCORII: "EXCORII", InsBOOLANDII: "BOOLANDII",
	InsEQUALII: "EQUALII", InsEQUALFF: "EQUALFF", InsEQUALSS: "EQUALSS", InsEQUALOO: "EQUALOO",
	InsEQUALTT: "EQUALTT", InsEQUALEFFEFF: "EQUALEFFEFF", InsEQUALEVTEVT: "EQUALEVTEVT",
	InsEQUALLOCLOC: "EQUALLOCLOC", InsEQUALTALTAL: "EQUALTALTAL",
	InsNEQUALII: "NEQUALII", InsNEQUALFF: "NEQUALFF", InsNEQUALSS: "NEQUALSS", InsNEQUALOO: "NEQUALOO",
	InsNEQUALTT: "NEQUALTT", InsNEQUALEFFEFF: "NEQUALEFFEFF", InsNEQUALEVTEVT: "NEQUALEVTEVT",
	InsNEQUALLOCLOC: "NEQUALLOCLOC", InsNEQUALTALTAL: "NEQUALTALTAL",
	InsGEQII: "GEQII", InsGEQFF: "GEQFF", InsGTII: "GTII", InsGTFF: "GTFF",
	InsLTII: "LTII", InsLTFF: "LTFF", InsLEQII: "LEQII", InsLEQFF: "LEQFF",
	InsSHLEFTII: "SHLEFTII", InsSHRIGHTII: "SHRIGHTII", InsUSHRIGHTII: "USHRIGHTII",
	InsADDII: "ADDII", InsADDIF: "ADDIF", InsADDFI: "ADDFI", InsADDFF: "ADDFF",
	InsADDSS: "ADDSS", InsADDVV: "ADDVV",
	InsSUBII: "SUBII", InsSUBIF: "SUBIF", InsSUBFI: "SUBFI", InsSUBFF: "SUBFF", InsSUBVV: "SUBVV",
	InsMULII: "MULII", InsMULIF: "MULIF", InsMULFI: "MULFI", InsMULFF: "MULFF",
	InsMULVF: "MULVF", InsMULFV: "MULFV",
	InsDIVII: "DIVII", InsDIVIF: "DIVIF", InsDIVFI: "DIVFI", InsDIVFF: "DIVFF",
	InsDIVVF: "DIVVF", InsDIVFV: "DIVFV",
	InsMODII: "MODII", InsNEGI: "NEGI", InsNEGF: "NEGF",
	InsMOVSP: "MOVSP", InsJMP: "JMP", InsJSR: "JSR", InsJZ: "JZ", InsJNZ: "JNZ",
	InsRETN: "RETN", InsDESTRUCT: "DESTRUCT", InsNOTI: "NOTI",
	InsDECISP: "DECISP", InsINCISP: "INCISP", InsCPDOWNBP: "CPDOWNBP", InsCPTOPBP: "CPTOPBP",
	InsDECIBP: "DECIBP", InsINCIBP: "INCIBP", InsSAVEBP: "SAVEBP", InsRESTOREBP: "RESTOREBP",
	InsSTORESTATE: "STORE_STATE",
}

// String returns the assembler mnemonic for the instruction type.
func (t InstructionType) String() string {
	if name, ok := instructionNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// Instruction is one already-decoded bytecode instruction. This package
// never parses raw bytecode: callers hand it fully decoded records.
//
// Size, StackOffset, SizeNoDestroy and SizeLocals are byte quantities;
// dividing by 4 yields Variable slot counts.
type Instruction struct {
	Type InstructionType
	// Offset is the instruction's own byte offset; NextOffset is the byte
	// offset of the instruction that follows it in program order.
	Offset     uint32
	NextOffset uint32

	Size        int
	StackOffset int
	JumpOffset  int

	Int    int
	Float  float32
	Str    string
	Object uint32

	ArgCount int
	Routine  int

	SizeNoDestroy int
	SizeLocals    int
}

// Program is a linear, already-decoded instruction array addressed by byte
// offset.
type Program struct {
	name     string
	length   uint32
	ordered  []Instruction
	byOffset map[uint32]Instruction
}

// NewProgram builds a Program from decoded instructions.
//
// Precondition: instruction offsets are unique.
func NewProgram(name string, length uint32, instructions []Instruction) *Program {
	p := &Program{
		name:     name,
		length:   length,
		ordered:  instructions,
		byOffset: make(map[uint32]Instruction, len(instructions)),
	}
	for _, ins := range instructions {
		if _, dup := p.byOffset[ins.Offset]; dup {
			panic(fmt.Sprintf("script: duplicate instruction offset %04x in program %s", ins.Offset, name))
		}
		p.byOffset[ins.Offset] = ins
	}
	return p
}

// Name returns the program's resource name.
func (p *Program) Name() string { return p.name }

// Length returns the program length in bytes; execution halts naturally when
// the instruction offset reaches it.
func (p *Program) Length() uint32 { return p.length }

// Instructions returns the instructions in program order.
func (p *Program) Instructions() []Instruction { return p.ordered }

// Instruction returns the instruction at the given byte offset.
func (p *Program) Instruction(offset uint32) (Instruction, bool) {
	ins, ok := p.byOffset[offset]
	return ins, ok
}

// encodedLength returns the byte width of ins as it would appear in compiled
// form. The builder uses it to lay instructions out contiguously.
func encodedLength(ins Instruction) uint32 {
	switch ins.Type {
	case InsCONSTI, InsCONSTF, InsCONSTO, InsMOVSP, InsJMP, InsJSR, InsJZ, InsJNZ,
		InsDECISP, InsINCISP, InsDECIBP, InsINCIBP:
		return 6
	case InsCONSTS:
		return 4 + uint32(len(ins.Str))
	case InsCPDOWNSP, InsCPTOPSP, InsCPDOWNBP, InsCPTOPBP, InsDESTRUCT:
		return 8
	case InsACTION:
		return 5
	case InsEQUALTT, InsNEQUALTT:
		return 4
	case InsSTORESTATE:
		return 10
	default:
		return 2
	}
}

// ProgramBuilder lays decoded instructions out at realistic byte offsets,
// starting at the standard entry offset. Jump targets can be resolved by
// label since byte offsets are not known until layout time.
type ProgramBuilder struct {
	name   string
	offset uint32
	ins    []Instruction
	labels map[string]uint32
	// fixups maps instruction index to the label its JumpOffset targets.
	fixups map[int]string
}

// NewProgramBuilder returns a builder whose first instruction lands on the
// entry offset.
func NewProgramBuilder(name string) *ProgramBuilder {
	return &ProgramBuilder{
		name:   name,
		offset: startInstructionOffset,
		labels: make(map[string]uint32),
		fixups: make(map[int]string),
	}
}

// Add appends ins, assigning its Offset and NextOffset.
func (b *ProgramBuilder) Add(ins Instruction) *ProgramBuilder {
	ins.Offset = b.offset
	b.offset += encodedLength(ins)
	ins.NextOffset = b.offset
	b.ins = append(b.ins, ins)
	return b
}

// Label records the current offset under name for later jump resolution.
func (b *ProgramBuilder) Label(name string) *ProgramBuilder {
	b.labels[name] = b.offset
	return b
}

// Jump appends a jump-family instruction whose target is a label resolved at
// Build time.
func (b *ProgramBuilder) Jump(typ InstructionType, label string) *ProgramBuilder {
	b.Add(Instruction{Type: typ})
	b.fixups[len(b.ins)-1] = label
	return b
}

// Build resolves labels and returns the finished Program.
//
// Postcondition: every labeled jump's JumpOffset is relative to the jump
// instruction's own offset, matching the decoded bytecode convention.
func (b *ProgramBuilder) Build() (*Program, error) {
	for idx, label := range b.fixups {
		target, ok := b.labels[label]
		if !ok {
			return nil, fmt.Errorf("building program %s: undefined label %q", b.name, label)
		}
		b.ins[idx].JumpOffset = int(target) - int(b.ins[idx].Offset)
	}
	return NewProgram(b.name, b.offset, b.ins), nil
}
