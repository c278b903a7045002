// Package rig talks to the thrust stand MCU: a stream of load cell counts
// in, servo angle commands out, over one serial link.
package rig

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the stand MCU.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100

	// HX711 output is a 24-bit signed integer.
	minCounts = -1 << 23
	maxCounts = 1<<23 - 1
)

// RawReading is one load cell measurement from the MCU.
type RawReading struct {
	Timestamp time.Time
	Counts    int32 // 24-bit signed bridge reading
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the stand MCU.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	readings  chan RawReading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		readings: make(chan RawReading, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading measurements.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading measurements in a goroutine
	go d.readLoop()

	return nil
}

// Close closes the connection and stops reading.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	close(d.readings)

	return nil
}

// Readings returns the channel of load cell measurements.
func (d *Serial) Readings() <-chan RawReading {
	return d.readings
}

// SetServo commands the throttle servo to an angle in [0,180].
func (d *Serial) SetServo(pos int) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}
	if pos < 0 || pos > 180 {
		return fmt.Errorf("servo position out of range: %d", pos)
	}

	if _, err := d.conn.Write([]byte(fmt.Sprintf("s%d\n", pos))); err != nil {
		return fmt.Errorf("failed to send servo command: %w", err)
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readLoop reads lines from the serial port and parses them into readings.
func (d *Serial) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLoop: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			reading, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			select {
			case d.readings <- reading:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Readings channel full, dropping measurement")
			}
		}
	}
}

// parseLine parses a line from the MCU into a RawReading.
// Format: unix_micros,counts
// Example: 1234567890123,-52013
func parseLine(line string) (RawReading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return RawReading{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	// Parse timestamp (unix microseconds)
	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawReading{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	timestamp := time.Unix(0, timestampMicros*1000) // Convert microseconds to nanoseconds

	counts, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return RawReading{}, fmt.Errorf("invalid counts: %w", err)
	}
	if counts < minCounts || counts > maxCounts {
		return RawReading{}, fmt.Errorf("counts out of 24-bit range: %d", counts)
	}

	return RawReading{
		Timestamp: timestamp,
		Counts:    int32(counts),
	}, nil
}
