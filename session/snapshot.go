package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkopriv2/relay/crypt"
	uuid "github.com/satori/go.uuid"
)

// A point in time view of a session, for diagnostics.  The counters are
// read under a single acquisition of the record lock, so they are
// consistent with each other.  Key material is never captured.
type Snapshot struct {
	Id            uint16
	Instance      uuid.UUID
	Remote        bool
	Mode          crypt.Mode
	Sequenced     bool
	Persistent    bool
	EncryptAll    bool
	HasKey        bool
	Authenticated bool
	UserId        uint32
	Refs          int32
	LastAction    time.Time
	RecvSeq       uint16
	SendSeq       uint16
	MsgsRecv      uint16
	MsgsSent      uint16
	MsgsProc      uint16
}

func (s *Session) Snapshot() Snapshot {
	r := s.body()
	cert := r.certificate()

	snap := Snapshot{
		Id:            r.id,
		Instance:      r.instance,
		Remote:        r.remote,
		Mode:          r.attrs.Mode,
		Sequenced:     r.attrs.Sequenced,
		Persistent:    r.attrs.Persistent,
		EncryptAll:    r.attrs.EncryptAll,
		HasKey:        r.key != nil,
		Authenticated: cert != nil && cert.IsValid(),
		Refs:          r.count()}
	if cert != nil {
		snap.UserId = cert.UserId()
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	snap.LastAction = r.lastAction
	snap.RecvSeq = r.recvSeq
	snap.SendSeq = r.sendSeq
	snap.MsgsRecv = r.recvCount
	snap.MsgsSent = r.sendCount
	snap.MsgsProc = r.procCount
	return snap
}

// Returns the snapshot as a flat key/value map.  The verbose form adds
// the identity and ownership details.
func (s Snapshot) Fields(verbose bool) map[string]interface{} {
	ret := map[string]interface{}{
		"id":         s.Id,
		"remote":     s.Remote,
		"mode":       s.Mode.String(),
		"sequenced":  s.Sequenced,
		"lastAction": s.LastAction.Format(time.RFC3339),
		"recvSeq":    s.RecvSeq,
		"sendSeq":    s.SendSeq,
		"msgsRecv":   s.MsgsRecv,
		"msgsSent":   s.MsgsSent,
		"msgsProc":   s.MsgsProc,
	}
	if !verbose {
		return ret
	}

	ret["instance"] = s.Instance.String()
	ret["persistent"] = s.Persistent
	ret["encryptAll"] = s.EncryptAll
	ret["hasKey"] = s.HasKey
	ret["authenticated"] = s.Authenticated
	ret["userId"] = s.UserId
	ret["refs"] = s.Refs
	return ret
}

func (s Snapshot) String() string {
	fields := s.Fields(false)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%v=%v", k, fields[k]))
	}
	return fmt.Sprintf("Session(%v)", strings.Join(parts, ", "))
}
