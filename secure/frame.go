package secure

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	flagEncrypted byte = 0x01

	headerSize = 3
)

type header struct {
	flags byte
	seq   uint16
}

func (h header) Encrypted() bool {
	return h.flags&flagEncrypted != 0
}

func (h header) Write(buf []byte) []byte {
	buf = append(buf, h.flags, 0, 0)
	binary.BigEndian.PutUint16(buf[len(buf)-2:], h.seq)
	return buf
}

func readHeader(frame []byte) (header, []byte, error) {
	if len(frame) < headerSize {
		return header{}, nil, errors.Wrapf(FrameError, "Frame of [%v] bytes is shorter than its header", len(frame))
	}

	h := header{frame[0], binary.BigEndian.Uint16(frame[1:3])}
	if h.flags&^flagEncrypted != 0 {
		return header{}, nil, errors.Wrapf(FrameError, "Unknown flags [%#x]", h.flags)
	}
	return h, frame[headerSize:], nil
}

// Additional data bound into every ciphertext: the session id followed
// by the frame header.
func additionalData(id uint16, h header) []byte {
	buf := make([]byte, 2, 2+headerSize)
	binary.BigEndian.PutUint16(buf, id)
	return h.Write(buf)
}
