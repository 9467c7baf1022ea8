package secure

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"github.com/pkopriv2/relay/common"
	"github.com/pkopriv2/relay/crypt"
	"github.com/pkopriv2/relay/dispatch"
	"github.com/pkopriv2/relay/session"
	metrics "github.com/rcrowley/go-metrics"
)

// Seals and opens frames for any number of sessions.
//
// A reliable channel serves ordered transports and demands that every
// inbound frame carry the exact successor of the last sequence received.
// An unreliable channel serves datagrams and accepts any newer sequence,
// tolerating loss but never replay.
//
// *This object is thread-safe*
type Channel struct {
	logger   common.Logger
	rand     io.Reader
	reliable bool
	registry metrics.Registry
	stats    *Stats
}

func NewChannel(ctx common.Context, name string) *Channel {
	ctx = ctx.Sub("Channel(%v)", name)

	registry := metrics.NewRegistry()
	return &Channel{
		logger:   ctx.Logger(),
		rand:     rand.Reader,
		reliable: ctx.Config().OptionalBool(confReliable, defaultReliable),
		registry: registry,
		stats:    newStats(registry),
	}
}

func (c *Channel) IsReliable() bool {
	return c.reliable
}

func (c *Channel) Stats() *Stats {
	return c.stats
}

func (c *Channel) Registry() metrics.Registry {
	return c.registry
}

// Seals a message for the session's peer.  Encrypted sessions produce an
// encrypted frame, and sessions in mode None a plaintext one.
func (c *Channel) Seal(s *session.Session, msg []byte) ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.Wrapf(InvalidSessionError, "Cannot seal for [%v]", s)
	}

	if s.Mode() == crypt.None {
		return c.seal(s, header{}, msg), nil
	}

	aead, err := s.SymmetricKey().AEAD()
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot seal for [%v]", s)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return nil, errors.Wrap(err, "Error generating nonce")
	}

	h := header{flags: flagEncrypted, seq: c.nextSeq(s)}

	frame := make([]byte, 0, headerSize+len(nonce)+len(msg)+aead.Overhead())
	frame = h.Write(frame)
	frame = append(frame, nonce...)
	frame = aead.Seal(frame, nonce, msg, additionalData(s.Id(), h))

	c.sent(s)
	return frame, nil
}

// Seals a message without encrypting it.  Refused for sessions that must
// encrypt everything.  Plaintext frames carry no sequence number, since
// nothing authenticates their header.
func (c *Channel) SealClear(s *session.Session, msg []byte) ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.Wrapf(InvalidSessionError, "Cannot seal for [%v]", s)
	}

	if mustEncrypt(s) {
		return nil, errors.Wrapf(PlaintextError, "Session [%v] encrypts every message", s)
	}

	return c.seal(s, header{}, msg), nil
}

func (c *Channel) seal(s *session.Session, h header, msg []byte) []byte {
	frame := make([]byte, 0, headerSize+len(msg))
	frame = h.Write(frame)
	frame = append(frame, msg...)

	c.sent(s)
	return frame
}

// Opens a frame received on the session and returns its message.  The
// message of a plaintext frame aliases the frame.
//
// The sequence number of an encrypted frame is checked, and recorded, only
// once the frame has authenticated.  Plaintext frames never touch the
// session's sequence state.
func (c *Channel) Open(s *session.Session, frame []byte) ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.Wrapf(InvalidSessionError, "Cannot open for [%v]", s)
	}

	h, body, err := readHeader(frame)
	if err != nil {
		return nil, err
	}

	var msg []byte
	if h.Encrypted() {
		msg, err = c.decrypt(s, h, body)
		if err != nil {
			c.stats.Forged.Inc(1)
			c.logger.Debug("Rejected frame [seq=%v] on [%v]: %v", h.seq, s, err)
			return nil, err
		}
	} else {
		if mustEncrypt(s) {
			c.stats.Plaintext.Inc(1)
			c.logger.Debug("Rejected plaintext frame [seq=%v] on [%v]", h.seq, s)
			return nil, errors.Wrapf(PlaintextError, "Session [%v] encrypts every message", s)
		}
		msg = body
	}

	if h.Encrypted() && isSequenced(s) && !s.TestSetRecvSeq(h.seq, c.reliable) {
		c.stats.Replayed.Inc(1)
		c.logger.Debug("Rejected frame [seq=%v] on [%v]", h.seq, s)
		return nil, errors.Wrapf(SequenceError, "Sequence [%v] cannot follow [%v]", h.seq, s.LastRecvSeq())
	}

	s.IncMsgsRecv()
	s.Touch()
	c.stats.Opened.Inc(1)
	return msg, nil
}

// Opens the frame and hands its message to the dispatcher.  Frames that
// fail to open never reach the dispatcher.
func (c *Channel) Receive(s *session.Session, frame []byte, d *dispatch.Dispatcher) error {
	msg, err := c.Open(s, frame)
	if err != nil {
		return err
	}
	return d.Submit(s, dispatch.NewBuffer(msg, nil))
}

func (c *Channel) decrypt(s *session.Session, h header, body []byte) ([]byte, error) {
	if s.Mode() == crypt.None {
		return nil, errors.Wrapf(AuthenticationError, "Session [%v] is unencrypted", s)
	}

	aead, err := s.SymmetricKey().AEAD()
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open for [%v]", s)
	}

	if len(body) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.Wrapf(FrameError, "Encrypted body of [%v] bytes is too short", len(body))
	}

	nonce, ciphertext := body[:aead.NonceSize()], body[aead.NonceSize():]
	msg, err := aead.Open(nil, nonce, ciphertext, additionalData(s.Id(), h))
	if err != nil {
		return nil, errors.Wrap(AuthenticationError, err.Error())
	}
	return msg, nil
}

func (c *Channel) nextSeq(s *session.Session) uint16 {
	if !isSequenced(s) {
		return 0
	}
	return s.NextSendSeq()
}

func (c *Channel) sent(s *session.Session) {
	s.IncMsgsSent()
	s.Touch()
	c.stats.Sealed.Inc(1)
}

// Encryption attributes other than the mode only apply to encrypted sessions.
func isSequenced(s *session.Session) bool {
	return s.Mode() != crypt.None && s.IsSequenced()
}

func mustEncrypt(s *session.Session) bool {
	return s.Mode() != crypt.None && s.IsAlwaysEncrypted()
}
