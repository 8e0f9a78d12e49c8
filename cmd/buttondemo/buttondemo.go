package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/SjB/pcf8574"
	"github.com/kidoman/embd"

	_ "github.com/kidoman/embd/host/all"
)

// INT connected to GPIO_17 of RPI
// PCF8574_GPIO_0 and _GPIO_1 = buttons (external pull-ups, pressed = low)
// PCF8574_GPIO_6 and _GPIO_7 = LEDs

func main() {
	flag.Parse()

	embd.SetHost(embd.HostRPi, 2)

	if err := embd.InitI2C(); err != nil {
		panic(err)
	}
	defer embd.CloseI2C()

	if err := embd.InitGPIO(); err != nil {
		panic(err)
	}
	defer embd.CloseGPIO()

	bus := embd.NewI2CBus(1)
	fmt.Println("connected to bus")
	expander := pcf8574.New(bus, pcf8574.DefaultAddress)

	// pins 6 and 7 drive the LEDs, everything else stays input
	if err := expander.WriteDirection(0xc0); err != nil {
		panic(err)
	}

	presses := make(chan uint8, 8)
	for _, n := range []uint8{0, 1} {
		n := n
		err := expander.AttachInterrupt(n, func() {
			led := 6 + n
			if err := expander.Toggle(led); err != nil {
				fmt.Printf("toggle led %d: %v (status %v)\n", led, err, pcf8574.StatusOf(err))
				return
			}
			presses <- n
		}, pcf8574.Falling)
		if err != nil {
			panic(err)
		}
	}

	irqPin, err := embd.NewDigitalPin("GPIO_17")
	if err != nil {
		panic(err)
	}
	if err := expander.EnableInterrupt(irqPin); err != nil {
		panic(err)
	}
	defer expander.Close()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, os.Kill)

	heartbeat := time.Tick(2 * time.Second)
	for {
		select {
		case n := <-presses:
			fmt.Printf("button %d pressed\n", n)
		case <-heartbeat:
			b, err := expander.Read()
			if err != nil {
				fmt.Printf("port read: %v (status %v)\n", err, pcf8574.StatusOf(err))
				continue
			}
			fmt.Printf("port [%#02x] direction [%#02x]\n", b, expander.Direction())
		case <-c:
			return
		}
	}
}
