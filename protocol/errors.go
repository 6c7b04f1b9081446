package protocol

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrShortRead         = errors.New("stream ended before a full message arrived")
	ErrUnexpectedCommand = errors.New("unexpected command")
	ErrUnexpectedPayload = errors.New("unexpected payload")
	ErrCardOutOfRange    = errors.New("card out of range")
	ErrHandSize          = errors.New("hand must hold exactly 26 cards")
)

// ProtocolError means a peer sent something the protocol does not allow
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error during %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransportError means the underlying stream failed
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is, or wraps, a ProtocolError
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsTransportError reports whether err is, or wraps, a TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ReadError classifies a failed read. Running out of stream is a short read;
// anything else is a transport failure.
func ReadError(err error) error {
	if err == nil {
		return nil
	}
	if IsProtocolError(err) || IsTransportError(err) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ProtocolError{Op: "read", Err: fmt.Errorf("%w: %w", ErrShortRead, err)}
	}
	return &TransportError{Op: "read", Err: err}
}

// WriteError wraps a failed write
func WriteError(err error) error {
	if err == nil {
		return nil
	}
	if IsTransportError(err) {
		return err
	}
	return &TransportError{Op: "write", Err: err}
}
