package soulbound

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aura-nw/soulbound/contracts/soulbound"
	"github.com/google/uuid"
)

// ErrUnknownSession is returned for iterator sessions that were never opened
// or are already terminated.
var ErrUnknownSession = errors.New("unknown iterator session")

// Reader provides paged access to token lists of the contract. Lists are
// walked lazily: each TraverseIterator call resumes the owner index scan right
// after the last consumed entry.
//
// Reader instances must be constructed using NewReader.
type Reader struct {
	c *soulbound.Contract

	mtx      sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	owner  string
	filter soulbound.Filter

	// mtx is held for the whole traversal step, so concurrent calls on the
	// same session never return the same page.
	mtx sync.Mutex
	// next is the owner index position to continue from. Entries rejected
	// by filter are consumed too. Index entries are never removed, so next
	// stays valid across state transitions of listed tokens.
	next uint64
}

// NewReader constructs new Reader of the given contract.
func NewReader(c *soulbound.Contract) *Reader {
	return &Reader{
		c:        c,
		sessions: make(map[uuid.UUID]*session),
	}
}

// EquippedOf opens iterator session over active equipped tokens of the owner.
func (r *Reader) EquippedOf(owner string) uuid.UUID {
	return r.open(owner, soulbound.Equipped)
}

// EquippedOfExpanded returns up to num active equipped tokens of the owner.
func (r *Reader) EquippedOfExpanded(owner string, num int) ([]soulbound.Token, error) {
	return r.traverse(&session{owner: owner, filter: soulbound.Equipped}, num)
}

// UnequippedOf opens iterator session over active unequipped tokens of the
// owner.
func (r *Reader) UnequippedOf(owner string) uuid.UUID {
	return r.open(owner, soulbound.Unequipped)
}

// UnequippedOfExpanded returns up to num active unequipped tokens of the
// owner.
func (r *Reader) UnequippedOfExpanded(owner string, num int) ([]soulbound.Token, error) {
	return r.traverse(&session{owner: owner, filter: soulbound.Unequipped}, num)
}

// TraverseIterator returns up to num next items of the session. Empty result
// means the iterator is exhausted.
func (r *Reader) TraverseIterator(sessionID uuid.UUID, num int) ([]soulbound.Token, error) {
	r.mtx.Lock()
	s, ok := r.sessions[sessionID]
	r.mtx.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	return r.traverse(s, num)
}

// TerminateSession closes the session.
func (r *Reader) TerminateSession(sessionID uuid.UUID) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	delete(r.sessions, sessionID)

	return nil
}

func (r *Reader) open(owner string, filter soulbound.Filter) uuid.UUID {
	id := uuid.New()

	r.mtx.Lock()
	r.sessions[id] = &session{owner: owner, filter: filter}
	r.mtx.Unlock()

	return id
}

// traverse collects up to num next items of the session and advances it.
// Session is left untouched on failure.
func (r *Reader) traverse(s *session, num int) ([]soulbound.Token, error) {
	if num <= 0 {
		return nil, nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	var (
		res  []soulbound.Token
		next = s.next
	)

	err := r.c.IterateTokensFrom(s.owner, s.next, nil, func(pos uint64, t soulbound.Token) bool {
		next = pos + 1

		if s.filter(t) {
			res = append(res, t)
		}

		return len(res) < num
	})
	if err != nil {
		return nil, err
	}

	s.next = next

	return res, nil
}
