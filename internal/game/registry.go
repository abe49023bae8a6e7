package game

import (
	"sort"

	"yupp-live-quiz/internal/domain"
)

// Sender is the outbound half of a player connection. Sends are best-effort;
// a failed or slow send must never block the caller.
type Sender interface {
	Send(kind string, payload any) error
	Close() error
}

type playerEntry struct {
	name  string
	conn  Sender
	score int
}

// Registry holds the joined players in join order together with their score
// ledger. It is not safe for concurrent use; the owning Session serializes
// every call through its own lock.
type Registry struct {
	players  []*playerEntry
	byName   map[string]*playerEntry
	onChange func()
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*playerEntry)}
}

// SetOnChange installs the roster-changed hook invoked after every
// successful Join or Leave.
func (r *Registry) SetOnChange(fn func()) {
	r.onChange = fn
}

// Join appends a player with score zero. Names are unique, exact-match and
// case-sensitive, for the lifetime of the session.
func (r *Registry) Join(name string, conn Sender) error {
	if _, ok := r.byName[name]; ok {
		return domain.ErrDuplicateName
	}
	entry := &playerEntry{name: name, conn: conn}
	r.players = append(r.players, entry)
	r.byName[name] = entry
	r.notify()
	return nil
}

// Leave removes the named player. Absent names are a no-op; scores of the
// remaining players are untouched.
func (r *Registry) Leave(name string) {
	if _, ok := r.byName[name]; !ok {
		return
	}
	delete(r.byName, name)
	for i, entry := range r.players {
		if entry.name == name {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	r.notify()
}

// AddScore adds delta to the named player's score. Unknown names are a
// no-op, which covers scoring computed after a disconnect.
func (r *Registry) AddScore(name string, delta int) {
	if entry, ok := r.byName[name]; ok {
		entry.score += delta
	}
}

func (r *Registry) Len() int { return len(r.players) }

func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns the roster in join order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.players))
	for _, entry := range r.players {
		names = append(names, entry.name)
	}
	return names
}

// Snapshot returns (name, score) pairs in join order, for lobby views.
func (r *Registry) Snapshot() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(r.players))
	for _, entry := range r.players {
		entries = append(entries, domain.LeaderboardEntry{Name: entry.name, Score: entry.score})
	}
	return entries
}

// Leaderboard returns players sorted by descending score. The sort is
// stable, so equal scores keep their join order.
func (r *Registry) Leaderboard() []domain.LeaderboardEntry {
	entries := r.Snapshot()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// ForEachConn visits every live connection in join order.
func (r *Registry) ForEachConn(fn func(name string, conn Sender)) {
	for _, entry := range r.players {
		fn(entry.name, entry.conn)
	}
}

func (r *Registry) notify() {
	if r.onChange != nil {
		r.onChange()
	}
}
