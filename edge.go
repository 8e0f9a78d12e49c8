package pcf8574

import "strings"

// Condition describes what the detector saw on a pin between two port
// snapshots. Conditions compose as a bit set: a 1->0 transition
// yields Falling|Change|Low, a 0->1 transition Rising|Change. Low is
// level-triggered and present on every snapshot where the pin sits
// low, mirroring the chip's INT line which stays asserted while an
// input differs from its last-read state.
//
// The same constants double as interrupt modes for AttachInterrupt.
type Condition uint8

const (
	// None reports no condition: the pin is high and did not move.
	None Condition = 0

	Low     Condition = 1 << iota // pin level is low
	Change                        // pin level differs from the previous snapshot
	Falling                       // high to low transition
	Rising                        // low to high transition
)

// Match reports whether a binding registered for mode fires on the
// detected condition set.
func (c Condition) Match(mode Condition) bool {
	return c&mode != 0
}

func (c Condition) String() string {
	if c == None {
		return "none"
	}
	var parts []string
	if c&Low != 0 {
		parts = append(parts, "low")
	}
	if c&Change != 0 {
		parts = append(parts, "change")
	}
	if c&Falling != 0 {
		parts = append(parts, "falling")
	}
	if c&Rising != 0 {
		parts = append(parts, "rising")
	}
	return strings.Join(parts, "|")
}

// Detect compares two port snapshots and reports the conditions seen
// on one pin. Pins outside the port report None.
func Detect(previous, current byte, pin uint8) Condition {
	if pin >= PinCount {
		return None
	}
	mask := byte(1) << pin

	var c Condition
	if current&mask == 0 {
		c |= Low
	}
	if previous&mask != current&mask {
		c |= Change
		if current&mask == 0 {
			c |= Falling
		} else {
			c |= Rising
		}
	}
	return c
}
