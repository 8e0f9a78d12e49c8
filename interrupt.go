// Package pcf8574 interrupt subsystem.
//
// The chip has a single active-low INT line that asserts while any
// input pin differs from its last-read state; it carries no
// information about which pin moved or in which direction. Per-pin
// edge and level interrupts are therefore emulated: Poll compares the
// previous and current port snapshots and dispatches the callbacks
// whose registered condition matches.
package pcf8574

import (
	"github.com/golang/glog"
	"github.com/kidoman/embd"
	"github.com/pkg/errors"
)

// binding ties one pin to an interrupt condition and a callback.
// At most one binding per pin; a zero fn means no binding.
type binding struct {
	mode Condition
	fn   func()
}

type interruptListener struct {
	bindings [PinCount]binding

	// ignore suppresses the next Poll. Armed by self-inflicted bus
	// writes while a host pin is wired (any write transaction resets
	// the chip's INT line, and the host would otherwise see a phantom
	// edge), or explicitly through IgnoreNextPoll.
	ignore bool

	// hostPin is the host GPIO wired to the chip's INT line, nil
	// while automatic polling is disabled.
	hostPin embd.DigitalPin
}

func defaultInterruptListener() *interruptListener {
	return &interruptListener{}
}

// writeHappened is called under the device lock after every
// successful port write.
func (l *interruptListener) writeHappened() {
	if l.hostPin != nil {
		l.ignore = true
	}
}

// AttachInterrupt binds a callback to an interrupt condition on a
// pin. mode is one of Low, Change, Falling or Rising; Low is
// level-triggered and fires on every poll while the pin stays low.
// At most one binding per pin: attaching again replaces the previous
// callback.
func (d *PCF8574) AttachInterrupt(pin uint8, fn func(), mode Condition) error {
	if pin >= PinCount {
		return InvalidPinError(pin)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	glog.V(1).Infof("pcf8574: attaching %v interrupt on pin %d", mode, pin)
	d.listener.bindings[pin] = binding{mode: mode, fn: fn}
	return nil
}

// DetachInterrupt removes the binding on a pin. Detaching a pin with
// no binding is a no-op.
func (d *PCF8574) DetachInterrupt(pin uint8) error {
	if pin >= PinCount {
		return InvalidPinError(pin)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listener.bindings[pin] = binding{}
	return nil
}

// Poll runs one interrupt detection cycle: shift the current snapshot
// into the previous one, read the port, and dispatch the callbacks
// whose condition matches, in increasing pin order.
//
// Callbacks run synchronously on the calling goroutine but outside
// the driver lock, so they may call back into the driver; they are
// expected to return promptly, as a stuck callback starves the
// remaining bindings of the cycle. A poll that arrives while the
// ignore flag is armed clears the flag and returns without touching
// the bus. A failed port read leaves both snapshots untouched.
func (d *PCF8574) Poll() error {
	d.mu.Lock()

	if d.listener.ignore {
		d.listener.ignore = false
		d.mu.Unlock()
		glog.V(1).Info("pcf8574: poll suppressed by ignore flag")
		return nil
	}

	b, err := d.Bus.ReadByte(d.Addr)
	if err != nil {
		d.mu.Unlock()
		return errors.Wrap(err, "pcf8574: port read failed")
	}
	glog.V(1).Infof("pcf8574: reading [%#02x] from port", b)
	d.oldPin = d.pin
	d.pin = b

	var fired []func()
	for pin := uint8(0); pin < PinCount; pin++ {
		bd := d.listener.bindings[pin]
		if bd.fn == nil {
			continue
		}
		if cond := Detect(d.oldPin, d.pin, pin); cond.Match(bd.mode) {
			glog.V(1).Infof("pcf8574: pin %d condition %v matches %v binding", pin, cond, bd.mode)
			fired = append(fired, bd.fn)
		}
	}
	d.mu.Unlock()

	for _, fn := range fired {
		fn()
	}
	return nil
}

// IgnoreNextPoll arms the suppression flag: the next Poll clears it
// and returns without reading the port or firing callbacks. When
// several expanders share one host INT line, the instance that does
// not own the event suppresses itself with this.
func (d *PCF8574) IgnoreNextPoll() {
	d.mu.Lock()
	d.listener.ignore = true
	d.mu.Unlock()
}

// EnableInterrupt wires the chip's INT line to a host GPIO and runs
// Poll whenever it fires. The INT line is active low, so only the
// falling edge is watched. Bindings may be attached before or after.
func (d *PCF8574) EnableInterrupt(pin embd.DigitalPin) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listener.hostPin != nil {
		// only one INT line on this product
		return errors.Errorf("pcf8574: interrupt pin has already been set to %v", d.listener.hostPin.N())
	}

	if err := pin.SetDirection(embd.In); err != nil {
		return err
	}

	err := pin.Watch(embd.EdgeFalling, func(embd.DigitalPin) {
		if err := d.Poll(); err != nil {
			glog.Errorf("pcf8574: poll failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	d.listener.hostPin = pin
	return nil
}

// DisableInterrupt stops watching the host INT pin. Bindings are
// kept: EnableInterrupt rearms them as they were.
func (d *PCF8574) DisableInterrupt() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listener.hostPin == nil {
		return nil
	}
	if err := d.listener.hostPin.StopWatching(); err != nil {
		return err
	}
	d.listener.hostPin = nil
	return nil
}

// Close disconnects from the host interrupt pin.
func (d *PCF8574) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listener.hostPin == nil {
		return nil
	}
	if err := d.listener.hostPin.Close(); err != nil {
		return err
	}
	d.listener.hostPin = nil
	return nil
}
