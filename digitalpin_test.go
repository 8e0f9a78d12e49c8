package pcf8574

import (
	"testing"

	"github.com/kidoman/embd"
)

func TestDigitalPinLookup(t *testing.T) {
	bus := &mockBus{}
	d := New(bus, DefaultAddress)

	for _, key := range []interface{}{"IO3", "GPIO_3", "3", 3} {
		pin, err := d.DigitalPin(key)
		if err != nil {
			t.Fatalf("lookup %v: %v", key, err)
		}
		if pin.N() != 3 {
			t.Errorf("lookup %v: N() = %d, want 3", key, pin.N())
		}
	}

	if _, err := d.DigitalPin("GPIO_8"); err == nil {
		t.Error("lookup of a nonexistent pin did not fail")
	}
}

func TestDigitalPinWriteRead(t *testing.T) {
	bus := &mockBus{echo: true}
	d := New(bus, DefaultAddress)

	pin, err := d.DigitalPin("GPIO_6")
	if err != nil {
		t.Fatal(err)
	}
	if err := pin.SetDirection(embd.Out); err != nil {
		t.Fatal(err)
	}
	if got := d.Direction(); got != 0x40 {
		t.Errorf("direction mask = %#02x, want 0x40", got)
	}

	if err := pin.Write(embd.High); err != nil {
		t.Fatal(err)
	}
	v, err := pin.Read()
	if err != nil {
		t.Fatal(err)
	}
	if v != embd.High {
		t.Errorf("read back %d after driving high", v)
	}

	if err := pin.Write(embd.Low); err != nil {
		t.Fatal(err)
	}
	v, err = pin.Read()
	if err != nil {
		t.Fatal(err)
	}
	if v != embd.Low {
		t.Errorf("read back %d after driving low", v)
	}
}

func TestDigitalPinWatch(t *testing.T) {
	bus := &mockBus{echo: true}
	d := New(bus, DefaultAddress)

	pin, err := d.DigitalPin("GPIO_2")
	if err != nil {
		t.Fatal(err)
	}

	fired := 0
	if err := pin.Watch(embd.EdgeRising, func(p embd.DigitalPin) {
		if p.N() != 2 {
			t.Errorf("handler received pin %d, want 2", p.N())
		}
		fired++
	}); err != nil {
		t.Fatal(err)
	}

	// watching forces the pin back to input
	if d.Direction()&0x04 != 0 {
		t.Error("watched pin left configured as output")
	}

	bus.value |= 0x04
	if err := d.Poll(); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("handler fired %d times, want 1", fired)
	}

	// falling edge does not match a rising watch
	bus.value &^= 0x04
	if err := d.Poll(); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("handler fired %d times after a falling edge, want 1", fired)
	}

	if err := pin.StopWatching(); err != nil {
		t.Fatal(err)
	}
	bus.value |= 0x04
	if err := d.Poll(); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("handler fired %d times after StopWatching, want 1", fired)
	}
}

// EdgeBoth and EdgeNone both register for any change, matching the
// chip's INT line which cannot distinguish edge directions.
func TestDigitalPinWatchEdgeMapping(t *testing.T) {
	bus := &mockBus{echo: true}
	d := New(bus, DefaultAddress)

	pin, err := d.DigitalPin("GPIO_1")
	if err != nil {
		t.Fatal(err)
	}

	fired := 0
	if err := pin.Watch(embd.EdgeBoth, func(embd.DigitalPin) { fired++ }); err != nil {
		t.Fatal(err)
	}

	bus.value |= 0x02
	if err := d.Poll(); err != nil {
		t.Fatal(err)
	}
	bus.value &^= 0x02
	if err := d.Poll(); err != nil {
		t.Fatal(err)
	}
	if fired != 2 {
		t.Errorf("change watch fired %d times over two edges, want 2", fired)
	}
}

func TestDigitalPinMisc(t *testing.T) {
	bus := &mockBus{}
	d := New(bus, DefaultAddress)

	pin, err := d.DigitalPin(0)
	if err != nil {
		t.Fatal(err)
	}

	if err := pin.ActiveLow(true); err == nil {
		t.Error("ActiveLow did not fail on a chip without a polarity register")
	}
	if err := pin.PullUp(); err != nil {
		t.Errorf("deprecated PullUp = %v, want nil", err)
	}
	if err := pin.PullDown(); err != nil {
		t.Errorf("deprecated PullDown = %v, want nil", err)
	}
	if err := pin.Close(); err != nil {
		t.Error(err)
	}
}
