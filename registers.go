package wd1772

// Status Register bit assignments (spec §3). Bit 1 and bit 2 carry
// different meanings for Type I vs Type II/III commands; STRBit name
// constants are given both readings since both appear in comments
// throughout the command state machine.
const (
	strBusy        = 0x01
	strIndex       = 0x02 // type I
	strDRQ         = 0x02 // type II/III
	strTR00        = 0x04 // type I
	strLostData    = 0x04 // type II/III (never set by this core, spec §7)
	strCRCError    = 0x08 // never set by this core, spec §7
	strRNF         = 0x10
	strSpinUp      = 0x20 // type I
	strRecordType  = 0x20 // type II/III
	strWPRT        = 0x40
	strMotorOn     = 0x80
)

// Command identifies the FDC's currently running (or idle) command.
type Command int

const (
	CmdNone Command = iota
	CmdRestore
	CmdSeek
	CmdStep
	CmdReadSectors
	CmdWriteSectors
	CmdReadAddress
	CmdReadTrack
	CmdWriteTrack
	CmdMotorStop
)

// CommandType is the WD1772's Type I-IV command classification, which
// governs Status Register interpretation and replace-while-busy rules.
type CommandType int

const (
	TypeI CommandType = iota + 1
	TypeII
	TypeIII
	TypeIV
)

// classifyCommand decodes the top nibble of a freshly-written command
// register, returning the command kind and its type. Grounded on the
// original's FDC_SetCommand dispatch (SPEC_FULL's "Command decode table").
func classifyCommand(cr uint8) (Command, CommandType) {
	top := cr >> 4
	switch top {
	case 0x0:
		return CmdRestore, TypeI
	case 0x1:
		return CmdSeek, TypeI
	case 0x2, 0x3:
		return CmdStep, TypeI // Step (no direction update bit changes state, not command)
	case 0x4, 0x5:
		return CmdStep, TypeI // Step-In
	case 0x6, 0x7:
		return CmdStep, TypeI // Step-Out
	case 0x8, 0x9:
		return CmdReadSectors, TypeII
	case 0xA, 0xB:
		return CmdWriteSectors, TypeII
	case 0xC:
		return CmdReadAddress, TypeIII
	case 0xD:
		return CmdNone, TypeIV // Force Interrupt: "command" left as-is by caller
	case 0xE:
		return CmdReadTrack, TypeIII
	case 0xF:
		return CmdWriteTrack, TypeIII
	}
	panic("wd1772: unreachable command nibble")
}

// stepKindOf distinguishes Step-In (forces +1) / Step-Out (forces -1)
// from plain Step (uses the last direction), based on the top nibble.
func stepKindOf(cr uint8) (forcedDir int, forced bool) {
	switch cr >> 4 {
	case 0x4, 0x5:
		return 1, true
	case 0x6, 0x7:
		return -1, true
	default:
		return 0, false
	}
}

// stepRateFDCCycles maps CR bits 0-1 to the Type I step rate in FDC
// cycles (table {6,12,2,3} ms, spec §4.G).
var stepRateMs = [4]int64{6, 12, 2, 3}

func stepRateFDCCycles(cr uint8) int64 {
	ms := stepRateMs[cr&0x3]
	return ms * 1000 * fdcClockHz / 1_000_000
}

// CR command bits shared across types, named per spec §3/§4.
const (
	crBitVerify       = 1 << 2 // Type I: verify after seek/step/restore
	crBitHeadLoad     = 1 << 2 // Type II/III: +15ms head-load settle
	crBitSpinUpDis    = 1 << 3 // 1 = disable motor spin-up wait
	crBitUpdateTrack  = 1 << 4 // Type I: update TR after step
	crBitMultiSector  = 1 << 4 // Type II: read/write many sectors
)

// Interrupt condition bits (low nibble of a Type IV command register).
const (
	intCondIndexPulse = 1 << 2
	intCondImmediate  = 1 << 3
)

// headLoadSettleFDCCycles is the 15 ms additional delay Type II/III
// commands incur when CR's head-load bit is set.
const headLoadSettleFDCCycles = 15 * 1000 * fdcClockHz / 1_000_000

// headSettleFDCCycles is the one head-settle wait before a Type I verify
// sequence begins (same 15 ms constant, spec §4.G Restore/Seek verify).
const headSettleFDCCycles = headLoadSettleFDCCycles
