package network

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// maxMessageSize is the maximum allowed message size (16 MB).
	maxMessageSize = 16 << 20

	// lengthPrefixSize is the size of the length prefix in bytes.
	lengthPrefixSize = 4
)

// Response status bytes.
const (
	statusOK    byte = 0
	statusError byte = 1
)

// RemoteError carries an error returned by the remote request handler.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "remote: " + e.Message
}

// writeMessage writes a length-prefixed message to the writer.
// Format: [4 bytes big-endian length] [payload]
func writeMessage(w io.Writer, data []byte) error {
	if len(data) > maxMessageSize {
		return fmt.Errorf("message too large: %d > %d", len(data), maxMessageSize)
	}

	var lengthBuf [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(data)))

	if _, err := w.Write(lengthBuf[:]); err != nil {
		return fmt.Errorf("write length:\n%w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write payload:\n%w", err)
	}

	return nil
}

// readMessage reads a length-prefixed message from the reader.
func readMessage(r io.Reader) ([]byte, error) {
	var lengthBuf [lengthPrefixSize]byte

	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		return nil, fmt.Errorf("read length:\n%w", err)
	}

	length := binary.BigEndian.Uint32(lengthBuf[:])

	if length > maxMessageSize {
		return nil, fmt.Errorf("message too large: %d > %d", length, maxMessageSize)
	}

	data := make([]byte, length)

	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read payload:\n%w", err)
	}

	return data, nil
}

// writeResponse writes a status byte followed by a length-prefixed payload:
// the response on success, the error text otherwise.
func writeResponse(w io.Writer, data []byte, handlerErr error) error {
	status, payload := statusOK, data
	if handlerErr != nil {
		status, payload = statusError, []byte(handlerErr.Error())
	}

	if _, err := w.Write([]byte{status}); err != nil {
		return fmt.Errorf("write status:\n%w", err)
	}

	return writeMessage(w, payload)
}

// readResponse reads a frame written by writeResponse.
// A handler failure is returned as *RemoteError.
func readResponse(r io.Reader) ([]byte, error) {
	var status [1]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return nil, fmt.Errorf("read status:\n%w", err)
	}

	payload, err := readMessage(r)
	if err != nil {
		return nil, err
	}

	switch status[0] {
	case statusOK:
		return payload, nil
	case statusError:
		return nil, &RemoteError{Message: string(payload)}
	default:
		return nil, fmt.Errorf("unknown response status %d", status[0])
	}
}
