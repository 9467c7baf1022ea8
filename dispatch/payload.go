package dispatch

// An inbound message buffer.  Whoever owns a payload must release it
// exactly once, after which its bytes must not be touched.
type Payload interface {
	Bytes() []byte
	Release()
}

// A payload over a plain byte slice.  The release function, if any, is
// handed the slice back (e.g. to return it to a pool).
type Buffer struct {
	raw     []byte
	release func([]byte)
}

func NewBuffer(raw []byte, release func([]byte)) *Buffer {
	return &Buffer{raw, release}
}

func (b *Buffer) Bytes() []byte {
	return b.raw
}

func (b *Buffer) Release() {
	raw := b.raw
	b.raw = nil
	if b.release != nil {
		b.release(raw)
	}
}
