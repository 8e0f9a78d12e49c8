package pcf8574

import (
	"errors"
	"time"

	"github.com/kidoman/embd"
)

var errNotScripted = errors.New("mockbus: transaction not scripted")

// mockBus is a scripted embd.I2CBus covering the raw byte
// transactions the PCF8574 speaks. The chip has no registers, so the
// register-oriented bus calls fail loudly if the driver ever issues
// them.
type mockBus struct {
	value    byte   // level the fake hardware reports on reads
	writes   []byte // every byte written, in order
	reads    int
	lastAddr byte
	readErr  error
	writeErr error

	// echo folds writes back into the read value, like a port with
	// nothing externally driving the pins.
	echo bool
}

func (b *mockBus) ReadByte(addr byte) (byte, error) {
	b.lastAddr = addr
	if b.readErr != nil {
		return 0, b.readErr
	}
	b.reads++
	return b.value, nil
}

func (b *mockBus) WriteByte(addr, value byte) error {
	b.lastAddr = addr
	if b.writeErr != nil {
		return b.writeErr
	}
	b.writes = append(b.writes, value)
	if b.echo {
		b.value = value
	}
	return nil
}

func (b *mockBus) lastWrite() byte {
	if len(b.writes) == 0 {
		return 0
	}
	return b.writes[len(b.writes)-1]
}

func (b *mockBus) ReadBytes(addr byte, num int) ([]byte, error) {
	return nil, errNotScripted
}

func (b *mockBus) WriteBytes(addr byte, value []byte) error {
	return errNotScripted
}

func (b *mockBus) ReadFromReg(addr, reg byte, value []byte) error {
	return errNotScripted
}

func (b *mockBus) ReadByteFromReg(addr, reg byte) (byte, error) {
	return 0, errNotScripted
}

func (b *mockBus) ReadWordFromReg(addr, reg byte) (uint16, error) {
	return 0, errNotScripted
}

func (b *mockBus) WriteToReg(addr, reg byte, value []byte) error {
	return errNotScripted
}

func (b *mockBus) WriteByteToReg(addr, reg, value byte) error {
	return errNotScripted
}

func (b *mockBus) WriteWordToReg(addr, reg byte, value uint16) error {
	return errNotScripted
}

func (b *mockBus) Close() error {
	return nil
}

// mockHostPin fakes the host GPIO the chip's INT line is wired to.
type mockHostPin struct {
	n        int
	dir      embd.Direction
	edge     embd.Edge
	handler  func(embd.DigitalPin)
	watching bool
	closed   bool
}

func (p *mockHostPin) N() int { return p.n }

func (p *mockHostPin) Write(val int) error { return nil }

func (p *mockHostPin) Read() (int, error) { return embd.High, nil }

func (p *mockHostPin) TimePulse(state int) (time.Duration, error) { return 0, nil }

func (p *mockHostPin) SetDirection(dir embd.Direction) error {
	p.dir = dir
	return nil
}

func (p *mockHostPin) ActiveLow(b bool) error { return nil }

func (p *mockHostPin) PullUp() error { return nil }

func (p *mockHostPin) PullDown() error { return nil }

func (p *mockHostPin) Watch(edge embd.Edge, handler func(embd.DigitalPin)) error {
	p.edge = edge
	p.handler = handler
	p.watching = true
	return nil
}

func (p *mockHostPin) StopWatching() error {
	p.watching = false
	return nil
}

func (p *mockHostPin) Close() error {
	p.closed = true
	p.watching = false
	return nil
}

// trigger simulates a falling edge on the host INT line.
func (p *mockHostPin) trigger() {
	if p.watching && p.handler != nil {
		p.handler(p)
	}
}
