package rig

// Device defines the interface for the stand MCU bridge (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Readings() <-chan RawReading
	SetServo(pos int) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
