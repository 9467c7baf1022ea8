package session

// The id of a session, detached from any record.  Used to find sessions
// in a table without constructing a handle.
type LookupKey uint16

// Orders keys the same way sessions are ordered.
func (k LookupKey) Compare(o LookupKey) int {
	return int(k) - int(o)
}

func lookupKeyComparator(a, b interface{}) int {
	return a.(LookupKey).Compare(b.(LookupKey))
}
