package session

import "sync/atomic"

// A source of ids for locally created sessions.  Implementations must be
// safe for concurrent use and must never return 0, which is reserved to
// mean "generate one".
type IdGenerator interface {
	Next() uint16
}

// The process-wide generator.  Used whenever a nil generator is given.
var DefaultIds IdGenerator = NewIdGenerator()

// Returns a generator that counts up from 1.
func NewIdGenerator() IdGenerator {
	return NewIdGeneratorFrom(0)
}

// Returns a generator whose first id is the successor of last.
//
// The generator wraps around the 16-bit space, skipping 0.  Long lived
// processes with heavy session churn will see ids repeat; uniqueness is
// only enforced by a Table.
func NewIdGeneratorFrom(last uint16) IdGenerator {
	return &counter{val: uint32(last)}
}

type counter struct {
	val uint32
}

func (c *counter) Next() uint16 {
	for {
		if id := uint16(atomic.AddUint32(&c.val, 1)); id != 0 {
			return id
		}
	}
}
