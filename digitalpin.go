package pcf8574

import (
	"fmt"
	"time"

	"github.com/kidoman/embd"
	"github.com/pkg/errors"
)

var pins = embd.PinMap{
	&embd.PinDesc{ID: "IO0", Aliases: []string{"0", "GPIO_0"}, Caps: embd.CapDigital, DigitalLogical: 0},
	&embd.PinDesc{ID: "IO1", Aliases: []string{"1", "GPIO_1"}, Caps: embd.CapDigital, DigitalLogical: 1},
	&embd.PinDesc{ID: "IO2", Aliases: []string{"2", "GPIO_2"}, Caps: embd.CapDigital, DigitalLogical: 2},
	&embd.PinDesc{ID: "IO3", Aliases: []string{"3", "GPIO_3"}, Caps: embd.CapDigital, DigitalLogical: 3},
	&embd.PinDesc{ID: "IO4", Aliases: []string{"4", "GPIO_4"}, Caps: embd.CapDigital, DigitalLogical: 4},
	&embd.PinDesc{ID: "IO5", Aliases: []string{"5", "GPIO_5"}, Caps: embd.CapDigital, DigitalLogical: 5},
	&embd.PinDesc{ID: "IO6", Aliases: []string{"6", "GPIO_6"}, Caps: embd.CapDigital, DigitalLogical: 6},
	&embd.PinDesc{ID: "IO7", Aliases: []string{"7", "GPIO_7"}, Caps: embd.CapDigital, DigitalLogical: 7},
}

type digitalPin struct {
	device *PCF8574
	id     string
	n      int
}

// DigitalPin returns an embd pin facade over one expander pin.
func (d *PCF8574) DigitalPin(key interface{}) (embd.DigitalPin, error) {
	pd, found := pins.Lookup(key, embd.CapDigital)
	if !found {
		return nil, fmt.Errorf("gpio: could not find pin matching %v", key)
	}

	return &digitalPin{
		device: d,
		id:     pd.ID,
		n:      pd.DigitalLogical,
	}, nil
}

// Watch configures the pin as an input and registers handler on the
// software interrupt table. EdgeRising and EdgeFalling map onto the
// matching conditions; EdgeBoth and EdgeNone register for any change.
func (p *digitalPin) Watch(edge embd.Edge, handler func(embd.DigitalPin)) error {
	if err := p.SetDirection(embd.In); err != nil {
		return err
	}

	mode := Change
	switch edge {
	case embd.EdgeRising:
		mode = Rising
	case embd.EdgeFalling:
		mode = Falling
	}
	return p.device.AttachInterrupt(uint8(p.n), func() { handler(p) }, mode)
}

func (p *digitalPin) StopWatching() error {
	return p.device.DetachInterrupt(uint8(p.n))
}

func (p *digitalPin) N() int {
	return p.n
}

func (p *digitalPin) Write(val int) error {
	return p.device.DigitalWrite(uint8(p.n), val)
}

func (p *digitalPin) Read() (int, error) {
	return p.device.DigitalRead(uint8(p.n))
}

func (p *digitalPin) TimePulse(state int) (time.Duration, error) {
	aroundState := embd.Low
	if state == embd.Low {
		aroundState = embd.High
	}

	// Wait for any previous pulse to end
	for {
		v, err := p.Read()
		if err != nil {
			return 0, err
		}

		if v == aroundState {
			break
		}
	}

	// Wait until the pin reaches the measured state
	for {
		v, err := p.Read()
		if err != nil {
			return 0, err
		}

		if v == state {
			break
		}
	}

	startTime := time.Now()

	// Wait until the pin leaves the measured state again
	for {
		v, err := p.Read()
		if err != nil {
			return 0, err
		}

		if v == aroundState {
			break
		}
	}

	return time.Since(startTime), nil
}

func (p *digitalPin) SetDirection(dir embd.Direction) error {
	return p.device.PinMode(uint8(p.n), dir)
}

func (p *digitalPin) ActiveLow(b bool) error {
	// no polarity inversion register on this chip
	return errors.New("pcf8574: active low is not supported")
}

// PullUp marks the pin as pulled up. The chip has no software pull
// resistors, so this is a no-op; input pins need external pull-ups.
func (p *digitalPin) PullUp() error {
	p.device.PullUp(uint8(p.n))
	return nil
}

// PullDown marks the pin as pulled down. No-op, see PullUp.
func (p *digitalPin) PullDown() error {
	p.device.PullDown(uint8(p.n))
	return nil
}

func (p *digitalPin) Close() error {
	return p.StopWatching()
}
