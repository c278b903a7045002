package main

import "machine"

const (
	// HX711 bridge interface. DOUT goes low when a conversion is ready;
	// the clock pin shifts the 24 data bits out.
	PIN_HX711_CLK = machine.D8
	PIN_HX711_DAT = machine.D9

	// Servo output (ESC throttle signal)
	PIN_SERVO = machine.D2

	// Extra clock pulses after the 24 data bits select the next gain.
	// One pulse = channel A, gain 128.
	HX711_GAIN_PULSES = 1

	// Serial configuration
	// Format "unix_micros,counts\n"
	// Example: "1234567890123456,-8388608\n" = ~27 bytes max per line
	// HX711 at 10 SPS: 10 lines/sec * 27 bytes = 270 bytes/sec
	// 115200 baud (11,520 bytes/sec) leaves plenty of headroom
	UART_BAUD_RATE = 115200
)
