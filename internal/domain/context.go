package domain

import "context"

type unitKey struct{}

// unitScope binds an Identity and its membership memo to one unit of work.
// Exactly one scope may be active on a context chain; the end function
// invalidates it so identity can never outlive the unit, on any exit path.
type unitScope struct {
	identity Identity
	unitID   string
	memo     *MembershipMemo
	ended    bool
}

// EndFunc releases a unit-of-work scope. Callers must invoke it via defer
// immediately after a successful BeginUnit so release also happens on panic.
type EndFunc func()

// BeginUnit establishes the identity scope for one unit of work: an inbound
// request or a background task. It fails with a ContextActiveError if the
// context already carries an active scope, which would indicate accidental
// nesting. The returned context carries the identity, a fresh unit-of-work ID
// and a fresh membership memo; the returned EndFunc clears all three.
func BeginUnit(ctx context.Context, id Identity) (context.Context, EndFunc, error) {
	if s, ok := ctx.Value(unitKey{}).(*unitScope); ok && !s.ended {
		return ctx, nil, ErrContextActive("unit of work %s already active", s.unitID)
	}
	s := &unitScope{
		identity: id,
		unitID:   NewID(),
		memo:     newMembershipMemo(),
	}
	end := func() {
		s.ended = true
		s.identity = Identity{}
		s.memo = nil
	}
	return context.WithValue(ctx, unitKey{}, s), end, nil
}

// CurrentIdentity returns the identity of the active unit of work, or the
// anonymous identity when no scope is active or the scope has ended. Callers
// never observe a stale identity.
func CurrentIdentity(ctx context.Context) Identity {
	s, ok := ctx.Value(unitKey{}).(*unitScope)
	if !ok || s.ended {
		return Anonymous()
	}
	return s.identity
}

// UnitID returns the unit-of-work ID for the active scope, or "" outside one.
func UnitID(ctx context.Context) string {
	s, ok := ctx.Value(unitKey{}).(*unitScope)
	if !ok || s.ended {
		return ""
	}
	return s.unitID
}

// MembershipMemoFromContext returns the active scope's membership memo, or
// nil outside a scope. The memo is owned by that single unit of work.
func MembershipMemoFromContext(ctx context.Context) *MembershipMemo {
	s, ok := ctx.Value(unitKey{}).(*unitScope)
	if !ok || s.ended {
		return nil
	}
	return s.memo
}

type clientInfoKey struct{}

// WithClientInfo attaches caller information (remote address, user agent) for
// audit enrichment. It is independent of the identity scope.
func WithClientInfo(ctx context.Context, info string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFromContext returns the attached caller information, or "".
func ClientInfoFromContext(ctx context.Context) string {
	info, _ := ctx.Value(clientInfoKey{}).(string)
	return info
}
