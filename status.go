package pcf8574

import (
	"errors"
	"fmt"
)

// Status classifies the outcome of a bus transaction against the
// expander, mirroring the TWI result codes of the usual I2C firmware
// interfaces.
type Status uint8

const (
	StatusSuccess  Status = iota // transaction completed
	StatusTooLong                // data too long for the transmit buffer
	StatusAddrNACK               // address sent, NACK received
	StatusDataNACK               // data sent, NACK received
	StatusBusError               // lost arbitration, bus fault, ...
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusTooLong:
		return "data too long"
	case StatusAddrNACK:
		return "address NACK"
	case StatusDataNACK:
		return "data NACK"
	case StatusBusError:
		return "bus error"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Sentinel errors a bus implementation may return, or wrap, so that
// StatusOf can classify the failure precisely.
var (
	ErrTooLong  = errors.New("i2c: data too long for transmit buffer")
	ErrAddrNACK = errors.New("i2c: received NACK on address transmit")
	ErrDataNACK = errors.New("i2c: received NACK on data transmit")
)

// StatusOf maps an error returned by a driver operation onto the
// transaction status domain. A nil error maps to StatusSuccess, an
// unrecognized failure to StatusBusError.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrTooLong):
		return StatusTooLong
	case errors.Is(err, ErrAddrNACK):
		return StatusAddrNACK
	case errors.Is(err, ErrDataNACK):
		return StatusDataNACK
	}
	return StatusBusError
}

// InvalidPinError reports a pin index outside the expander's fixed
// 0..7 range.
type InvalidPinError uint8

func (e InvalidPinError) Error() string {
	return fmt.Sprintf("pcf8574: invalid pin %d (want 0..%d)", uint8(e), PinCount-1)
}
