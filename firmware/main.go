//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/servo"
)

var (
	uart = machine.UART0

	throttle   servo.Servo
	servoReady bool

	// Serial buffer for reading commands
	serialBuffer [8]byte
	serialPos    int
)

func main() {
	// Configure HX711 pins
	PIN_HX711_CLK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_HX711_DAT.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_HX711_CLK.Low()

	// Configure servo PWM
	s, err := servo.New(machine.TCC0, PIN_SERVO)
	if err != nil {
		// No PWM means no throttle control; keep streaming readings so
		// the host can still weigh.
		println("servo init failed:", err.Error())
	} else {
		throttle = s
		servoReady = true
		throttle.SetAngle(0)
	}

	// Configure UART for servo commands
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Main loop
	for {
		// Check for serial input (non-blocking)
		processSerial()

		// HX711 signals a finished conversion by pulling DOUT low
		if !PIN_HX711_DAT.Get() {
			counts := readHX711()
			outputReading(counts)
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

// readHX711 shifts one 24-bit conversion out of the bridge ADC and leaves
// it configured for channel A at gain 128.
func readHX711() int32 {
	var value uint32

	for i := 0; i < 24; i++ {
		PIN_HX711_CLK.High()
		delayPulse()
		value = value << 1
		if PIN_HX711_DAT.Get() {
			value |= 1
		}
		PIN_HX711_CLK.Low()
		delayPulse()
	}

	// Gain select pulses for the next conversion
	for i := 0; i < HX711_GAIN_PULSES; i++ {
		PIN_HX711_CLK.High()
		delayPulse()
		PIN_HX711_CLK.Low()
		delayPulse()
	}

	// Sign-extend the 24-bit two's complement value
	if value&0x800000 != 0 {
		value |= 0xFF000000
	}
	return int32(value)
}

// delayPulse keeps clock edges above the HX711's 0.2us minimum. The pin
// toggles alone take long enough on most MCUs, but don't rely on it.
func delayPulse() {
	time.Sleep(time.Microsecond)
}

func outputReading(counts int32) {
	// Get timestamp in unix microseconds
	now := time.Now()
	timestampMicros := now.UnixNano() / 1000 // Convert nanoseconds to microseconds

	// Output format: "unix_micros,counts\n"
	// Example: "1234567890123,-12345\n"
	print(timestampMicros)
	print(",")
	print(counts)
	print("\n")
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Check for newline (end of line)
		if data == '\n' || data == '\r' {
			if serialPos > 1 && serialBuffer[0] == 's' {
				updateServo()
			}
			// Reset buffer regardless of length
			serialPos = 0
			continue
		}

		// Ignore whitespace
		if data == ' ' || data == '\t' {
			continue
		}

		// Commands are 's' followed by up to 3 digits
		switch {
		case serialPos == 0 && data == 's':
			serialBuffer[0] = data
			serialPos = 1
		case serialPos >= 1 && serialPos < 4 && data >= '0' && data <= '9':
			serialBuffer[serialPos] = data
			serialPos++
		default:
			// Invalid character - reset buffer
			serialPos = 0
		}
	}
}

func updateServo() {
	// Parse the digits after 's'
	angle := 0
	for i := 1; i < serialPos; i++ {
		angle = angle*10 + int(serialBuffer[i]-'0')
	}
	if angle > 180 || !servoReady {
		return
	}

	throttle.SetAngle(angle)
}
