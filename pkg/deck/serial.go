package deck

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// SerialPort wraps the serial connection to the controller board.
// Writes are serialized so heartbeat replies and acknowledgments from
// different goroutines never interleave.
type SerialPort struct {
	port serial.Port
	path string

	mu     sync.Mutex
	closed bool
}

// OpenSerial opens the serial port at baud, 8N1. A positive readTimeout lets
// Read notice Close on drivers that do not interrupt a blocked read.
func OpenSerial(portPath string, baud int, readTimeout time.Duration) (*SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}

	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}

	log.Info().Str("port", portPath).Int("baud", baud).Msg("Serial port opened")

	return &SerialPort{port: port, path: portPath}, nil
}

// Path returns the device path.
func (s *SerialPort) Path() string {
	return s.path
}

// Write sends raw bytes to the serial port.
func (s *SerialPort) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.port.Write(data)
}

// Read reads raw bytes from the serial port. Read timeouts are retried until
// data arrives or the port is closed, so callers see blocking semantics.
func (s *SerialPort) Read(buf []byte) (int, error) {
	for {
		n, err := s.port.Read(buf)
		if n > 0 || err != nil {
			if err != nil && s.isClosed() {
				return n, ErrClosed
			}
			return n, err
		}
		if s.isClosed() {
			return 0, ErrClosed
		}
	}
}

// Close closes the serial port. It is safe to call more than once.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.port.Close()
	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
		return nil
	}
	return err
}

// IsOpen reports whether Close has not been called.
func (s *SerialPort) IsOpen() bool {
	return !s.isClosed()
}

func (s *SerialPort) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
