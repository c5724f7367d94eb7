package registry

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Directory is the reconnection directory: nickname to the session id it
// was abandoned from. An entry exists only while the session keeps a
// vacant slot reserved for that nickname's return; it is removed the
// moment the nickname reoccupies a slot or the session is deleted.
//
// Entries live in a go-cache store. By default they never expire; a
// positive TTL makes abandoned reservations lapse on their own, after
// which the vacated session is joinable again once its other reservation
// (if any) clears.
type Directory struct {
	ttl   time.Duration
	store *cache.Cache
}

// NewDirectory creates a Directory. A ttl of zero or less keeps
// reservations until they are cancelled or their session is purged.
func NewDirectory(ttl time.Duration) *Directory {
	if ttl <= 0 {
		return &Directory{
			ttl:   cache.NoExpiration,
			store: cache.New(cache.NoExpiration, 0),
		}
	}

	return &Directory{
		ttl:   ttl,
		store: cache.New(ttl, ttl),
	}
}

// Reserve records that nick may reclaim a slot in session sid. A second
// reservation for the same nickname overwrites the first.
func (d *Directory) Reserve(nick string, sid uint64) {
	d.store.Set(nick, sid, d.ttl)
}

// Lookup returns the session id reserved for nick, if any.
func (d *Directory) Lookup(nick string) (uint64, bool) {
	v, found := d.store.Get(nick)
	if !found {
		return 0, false
	}

	return v.(uint64), true
}

// Cancel removes the reservation for nick, if present.
func (d *Directory) Cancel(nick string) {
	d.store.Delete(nick)
}

// PurgeSession removes every reservation pointing at sid. Called when a
// session with both slots vacant is deleted, so that no entry ever
// references a dead session.
func (d *Directory) PurgeSession(sid uint64) {
	for nick, item := range d.store.Items() {
		if id, ok := item.Object.(uint64); ok && id == sid {
			d.store.Delete(nick)
		}
	}
}

// ReservedSessions returns the set of session ids with at least one
// reservation, used to exclude them from the matchmaking scan.
func (d *Directory) ReservedSessions() map[uint64]bool {
	out := make(map[uint64]bool)
	for _, item := range d.store.Items() {
		if id, ok := item.Object.(uint64); ok {
			out[id] = true
		}
	}

	return out
}

// Len returns the number of live reservations.
func (d *Directory) Len() int {
	return d.store.ItemCount()
}
