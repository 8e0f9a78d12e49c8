// Package pcf8574 allows interfacing with the PCF8574 8-bit I2C I/O
// expansion chip.
//
// The chip exposes a single quasi-bidirectional 8-bit port: there is
// no direction register, no pull resistor control and no per-pin
// interrupt configuration. The driver emulates per-pin direction with
// shadow masks and merges every write so that pins used as inputs are
// not disturbed by output updates on the shared port register.
// Edge and level interrupts are detected in software by comparing
// successive port snapshots; see AttachInterrupt and Poll.
package pcf8574

import (
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/kidoman/embd"
	"github.com/pkg/errors"
)

// PinCount is the number of I/O pins on the expander.
const PinCount = 8

// DefaultAddress is the conventional base address of a PCF8574 with
// A0 wired high and A1, A2 low.
const DefaultAddress = 0x21

// PCF8574 8-bit I2C I/O expansion chip.
type PCF8574 struct {
	Bus  embd.I2CBus
	Addr byte

	// Shadow state. port holds the last requested value for each
	// OUTPUT pin, ddr the emulated direction mask (1 = OUTPUT), pin
	// the current input snapshot and oldPin the previous one. oldPin
	// is shifted only by Poll, so one detection cycle always compares
	// against the snapshot of the previous cycle.
	port   byte
	ddr    byte
	pin    byte
	oldPin byte

	listener *interruptListener
	mu       sync.Mutex
}

// New creates a new PCF8574 interface. All shadows start at zero,
// the chip's power-on state.
func New(bus embd.I2CBus, addr byte) *PCF8574 {
	return &PCF8574{
		Bus:      bus,
		Addr:     addr,
		listener: defaultInterruptListener(),
	}
}

// refreshInput reads the physical port into the current snapshot.
// The previous snapshot is untouched; only Poll may shift it.
func (d *PCF8574) refreshInput() error {
	b, err := d.Bus.ReadByte(d.Addr)
	if err != nil {
		return errors.Wrap(err, "pcf8574: port read failed")
	}
	glog.V(1).Infof("pcf8574: reading [%#02x] from port", b)
	d.pin = b
	return nil
}

// updateGPIO writes the merged port value: OUTPUT pins take their bit
// from the output intent, INPUT pins keep the last observed level so
// the shared register write does not disturb them. refreshInput must
// have run first or the INPUT bits are stale.
func (d *PCF8574) updateGPIO() error {
	merged := (d.port & d.ddr) | (d.pin &^ d.ddr)
	glog.V(1).Infof("pcf8574: writing [%#02x] to port", merged)
	if err := d.Bus.WriteByte(d.Addr, merged); err != nil {
		return errors.Wrap(err, "pcf8574: port write failed")
	}
	// Driven pins read back the value they were driven to.
	d.pin = merged
	d.listener.writeHappened()
	return nil
}

// writeMerged installs a new output intent and pushes the merged
// value to the chip. On any bus failure the intent is rolled back so
// a failed operation leaves no shadow trace.
func (d *PCF8574) writeMerged(port byte) error {
	old := d.port
	d.port = port
	if err := d.refreshInput(); err != nil {
		d.port = old
		return err
	}
	if err := d.updateGPIO(); err != nil {
		d.port = old
		return err
	}
	return nil
}

func (d *PCF8574) applyDirection(ddr byte) error {
	old := d.ddr
	d.ddr = ddr
	if err := d.refreshInput(); err != nil {
		d.ddr = old
		return err
	}
	if err := d.updateGPIO(); err != nil {
		d.ddr = old
		return err
	}
	return nil
}

// PinMode sets the direction of a pin and applies it immediately with
// a merged port update. The PCF8574 has no pull resistors, so there
// is no INPUT_PULLUP distinct from embd.In; external pull-ups are
// required on input pins.
func (d *PCF8574) PinMode(pin uint8, dir embd.Direction) error {
	if pin >= PinCount {
		return InvalidPinError(pin)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	ddr := d.ddr
	if dir == embd.Out {
		ddr |= 1 << pin
	} else {
		ddr &^= 1 << pin
	}
	glog.V(1).Infof("pcf8574: pin %d direction %v, mask [%#02x]", pin, dir, ddr)
	return d.applyDirection(ddr)
}

// WriteDirection replaces the whole emulated direction mask (1 =
// OUTPUT) and reapplies the port in a single transaction. Use it to
// batch several direction changes instead of one PinMode per pin.
func (d *PCF8574) WriteDirection(conf byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	glog.V(1).Infof("pcf8574: new direction mask [%#02x]", conf)
	return d.applyDirection(conf)
}

// Direction returns the emulated direction mask, 1 = OUTPUT.
func (d *PCF8574) Direction() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ddr
}

// DigitalWrite sets the state of an OUTPUT pin to embd.High or
// embd.Low. The port is read back first so the merged write carries
// the current level of every INPUT pin unchanged.
func (d *PCF8574) DigitalWrite(pin uint8, val int) error {
	if pin >= PinCount {
		return InvalidPinError(pin)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	port := d.port
	if val == embd.Low {
		port &^= 1 << pin
	} else {
		port |= 1 << pin
	}
	return d.writeMerged(port)
}

// DigitalRead reads the current state of a pin. An OUTPUT pin reads
// back the level it was driven to, as the chip loops driven levels
// back into the port.
func (d *PCF8574) DigitalRead(pin uint8) (int, error) {
	if pin >= PinCount {
		return 0, InvalidPinError(pin)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.refreshInput(); err != nil {
		return 0, err
	}
	if d.pin&(1<<pin) == 0 {
		return embd.Low, nil
	}
	return embd.High, nil
}

// Toggle flips the state of an OUTPUT pin with a merged port update.
func (d *PCF8574) Toggle(pin uint8) error {
	if pin >= PinCount {
		return InvalidPinError(pin)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeMerged(d.port ^ 1<<pin)
}

// Write sets all 8 pins in one go. The value is written literally,
// bypassing the direction merge: callers take over responsibility for
// input pins on the port.
func (d *PCF8574) Write(value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	glog.V(1).Infof("pcf8574: writing [%#02x] to port (direct)", value)
	if err := d.Bus.WriteByte(d.Addr, value); err != nil {
		return errors.Wrap(err, "pcf8574: port write failed")
	}
	d.port = value
	d.listener.writeHappened()
	return nil
}

// Read reads the state of all 8 pins in one go.
func (d *PCF8574) Read() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.refreshInput(); err != nil {
		return 0, err
	}
	return d.pin, nil
}

// Set drives all pins HIGH, exactly like Write(0xff).
func (d *PCF8574) Set() error {
	return d.Write(0xff)
}

// Clear drives all pins LOW, exactly like Write(0x00).
func (d *PCF8574) Clear() error {
	return d.Write(0x00)
}

// PullUp marks a pin as pulled up.
//
// Deprecated: the chip has no software pull resistors; this does
// nothing and exists for source compatibility only.
func (d *PCF8574) PullUp(pin uint8) {}

// PullDown marks a pin as pulled down.
//
// Deprecated: the chip has no software pull resistors; this does
// nothing and exists for source compatibility only.
func (d *PCF8574) PullDown(pin uint8) {}

// Blink drives a pin through count ON/OFF couples spread over the
// given total duration.
//
// Deprecated: blocking convenience helper kept from the original
// API; prefer a caller-side time.Ticker.
func (d *PCF8574) Blink(pin uint8, count uint16, duration time.Duration) error {
	if pin >= PinCount {
		return InvalidPinError(pin)
	}
	if count == 0 {
		return nil
	}
	half := duration / time.Duration(count) / 2
	for i := uint16(0); i < count; i++ {
		if err := d.DigitalWrite(pin, embd.High); err != nil {
			return err
		}
		time.Sleep(half)
		if err := d.DigitalWrite(pin, embd.Low); err != nil {
			return err
		}
		time.Sleep(half)
	}
	return nil
}
