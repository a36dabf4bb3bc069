package finder

import "time"

const (
	DefaultTextDelay   = 500 * time.Millisecond
	DefaultToggleDelay = 100 * time.Millisecond
)

// Tier names the delay class of a scheduled fire.
type Tier int

const (
	TierNone Tier = iota
	TierText
	TierToggle
)

func (t Tier) String() string {
	switch t {
	case TierText:
		return "text"
	case TierToggle:
		return "toggle"
	default:
		return "none"
	}
}

// Ticket describes a scheduled fire. The host arms a timer for Delay and
// hands Seq back to Expire when it goes off.
type Ticket struct {
	Seq      uint64
	Delay    time.Duration
	Deadline time.Time
	Tier     Tier
}

// Debouncer is a trailing-edge debouncer with two delay tiers. Every new
// schedule supersedes the previous one, so only the last change fires.
// It does not own a timer and is not safe for concurrent use.
type Debouncer struct {
	textDelay   time.Duration
	toggleDelay time.Duration

	seq     uint64
	pending bool
	current Ticket
}

// NewDebouncer returns an idle debouncer. Non-positive delays fall back to
// the defaults.
func NewDebouncer(textDelay, toggleDelay time.Duration) *Debouncer {
	if textDelay <= 0 {
		textDelay = DefaultTextDelay
	}
	if toggleDelay <= 0 {
		toggleDelay = DefaultToggleDelay
	}
	return &Debouncer{textDelay: textDelay, toggleDelay: toggleDelay}
}

// Text schedules a fire for a text change.
func (d *Debouncer) Text(now time.Time) Ticket {
	return d.schedule(now, TierText, d.textDelay)
}

// Toggle schedules a fire for a mode toggle.
func (d *Debouncer) Toggle(now time.Time) Ticket {
	return d.schedule(now, TierToggle, d.toggleDelay)
}

func (d *Debouncer) schedule(now time.Time, tier Tier, delay time.Duration) Ticket {
	d.seq++
	d.pending = true
	d.current = Ticket{Seq: d.seq, Delay: delay, Deadline: now.Add(delay), Tier: tier}
	return d.current
}

// Expire reports whether seq is the outstanding schedule. A match returns
// the debouncer to idle; anything else is a superseded timer and is ignored.
func (d *Debouncer) Expire(seq uint64) bool {
	if !d.pending || seq != d.current.Seq {
		return false
	}
	d.pending = false
	return true
}

// Pending returns the outstanding schedule, if any.
func (d *Debouncer) Pending() (Ticket, bool) {
	return d.current, d.pending
}

// Cancel drops the outstanding schedule.
func (d *Debouncer) Cancel() {
	d.pending = false
}
