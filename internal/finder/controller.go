// Package finder is the incremental search core: it debounces input, turns
// the query state into engine queries and serves a virtual result list from
// paged fetches. Nothing here blocks or owns a goroutine. The host loop
// schedules timers from Tickets, runs Submit and Fetch off the loop and feeds
// their results back through ApplySubmit and ApplyFetch.
package finder

import (
	"context"
	"time"

	"github.com/pders01/mifind/internal/debuglog"
	"github.com/pders01/mifind/internal/search"
)

// RowRange is the half-open row interval [Start, End).
type RowRange struct {
	Start uint32
	End   uint32
}

// Presenter receives view updates. Calls happen on the host loop.
type Presenter interface {
	TotalCountChanged(total uint32)
	RowsInvalidated(r RowRange)
	StatusTextChanged(text string)
	TitleChanged(text string)
}

// SubmitRequest is an accepted query waiting to be submitted.
type SubmitRequest struct {
	Gen   uint64
	State QueryState
	Query search.Query
}

// SubmitResult carries a Submit outcome back to the loop.
type SubmitResult struct {
	Gen     uint64
	State   QueryState
	Session search.Session
	Err     error
}

// FetchJob is a page fetch for the session of a given cache generation.
type FetchJob struct {
	Gen       uint64
	SessionID uint64
	Start     uint32
	Count     uint32
}

// FetchResult carries a Fetch outcome back to the loop.
type FetchResult struct {
	Job   FetchJob
	Items []search.Item
	Err   error
}

// Options tunes a Controller.
type Options struct {
	TextDelay   time.Duration
	ToggleDelay time.Duration
	Fields      search.Fields
}

// Controller owns the query state, the debouncer and the page cache.
type Controller struct {
	client    search.Client
	expander  Expander
	presenter Presenter

	debouncer *Debouncer
	cache     *PageCache
	fields    search.Fields

	state      QueryState
	queryGen   uint64
	session    search.Session
	hasSession bool

	status string
	title  string
}

// New builds an idle controller. expander may be nil.
func New(client search.Client, expander Expander, presenter Presenter, opts Options) *Controller {
	fields := opts.Fields
	if fields == 0 {
		fields = search.DefaultFields
	}
	return &Controller{
		client:    client,
		expander:  expander,
		presenter: presenter,
		debouncer: NewDebouncer(opts.TextDelay, opts.ToggleDelay),
		cache:     NewPageCache(),
		fields:    fields,
		status:    StatusReady,
		title:     AppName,
	}
}

func (c *Controller) State() QueryState { return c.state }
func (c *Controller) Total() uint32     { return c.cache.Total() }
func (c *Controller) Status() string    { return c.status }
func (c *Controller) Title() string     { return c.title }

// Debouncer exposes the debouncer for inspection.
func (c *Controller) Debouncer() *Debouncer { return c.debouncer }

// RestoreModes sets the toggles without scheduling a query.
func (c *Controller) RestoreModes(regex, migemo bool) {
	c.state.SetMigemo(migemo)
	c.state.SetRegex(regex)
}

// SetTerm records new input text and schedules a text-tier fire.
func (c *Controller) SetTerm(term string, now time.Time) Ticket {
	c.state.Term = term
	return c.debouncer.Text(now)
}

// ToggleRegex flips regex matching and schedules a toggle-tier fire.
func (c *Controller) ToggleRegex(now time.Time) Ticket {
	c.state.SetRegex(!c.state.Regex)
	return c.debouncer.Toggle(now)
}

// ToggleMigemo flips Migemo expansion and schedules a toggle-tier fire.
func (c *Controller) ToggleMigemo(now time.Time) Ticket {
	c.state.SetMigemo(!c.state.Migemo)
	return c.debouncer.Toggle(now)
}

// Fire handles an expired timer. It returns the query to submit, or nil when
// seq was superseded or the term is empty. An empty term clears the list
// immediately.
func (c *Controller) Fire(seq uint64) *SubmitRequest {
	if !c.debouncer.Expire(seq) {
		return nil
	}
	return c.accept()
}

// Refresh resubmits the current state without waiting for a timer.
func (c *Controller) Refresh() *SubmitRequest {
	c.debouncer.Cancel()
	return c.accept()
}

func (c *Controller) accept() *SubmitRequest {
	c.queryGen++
	if c.state.Term == "" {
		c.clear()
		return nil
	}
	return &SubmitRequest{
		Gen:   c.queryGen,
		State: c.state,
		Query: c.state.Effective(c.expander, c.fields),
	}
}

func (c *Controller) clear() {
	c.hasSession = false
	c.session = search.Session{}
	c.cache.Reset(0)
	c.presenter.TotalCountChanged(0)
	c.presenter.RowsInvalidated(RowRange{})
	c.setStatus(StatusReady)
	c.setTitle(AppName)
}

// Submit runs req against the engine. It only reads immutable fields and is
// meant to run off the loop.
func (c *Controller) Submit(ctx context.Context, req SubmitRequest) SubmitResult {
	sess, err := c.client.Submit(ctx, req.Query)
	return SubmitResult{Gen: req.Gen, State: req.State, Session: sess, Err: err}
}

// ApplySubmit installs a Submit outcome. Results of superseded queries are
// dropped and ApplySubmit returns false. On error the previous total and
// rows stay in place and only the status changes.
func (c *Controller) ApplySubmit(res SubmitResult) bool {
	if res.Gen != c.queryGen {
		debuglog.Debugf("finder: dropping stale submit gen=%d current=%d", res.Gen, c.queryGen)
		return false
	}

	c.setTitle(TitleFor(res.State.Term))
	if res.Err != nil {
		debuglog.Warnf("finder: submit %q: %v", res.State.Term, res.Err)
		c.setStatus(StatusForError(res.Err))
		return true
	}

	c.session = res.Session
	c.hasSession = true
	c.cache.Reset(res.Session.Total)
	c.presenter.TotalCountChanged(res.Session.Total)
	c.presenter.RowsInvalidated(RowRange{Start: 0, End: res.Session.Total})
	c.setStatus(FoundText(res.Session.Total))
	return true
}

// Row returns the item at index, or a fetch job for its page on a miss.
// A page is requested once until it completes or fails.
func (c *Controller) Row(index uint32) (*search.Item, *FetchJob) {
	if !c.hasSession {
		return nil, nil
	}
	item, req := c.cache.Get(index)
	if req == nil {
		return item, nil
	}
	return nil, &FetchJob{
		Gen:       req.Gen,
		SessionID: c.session.ID,
		Start:     req.Start,
		Count:     req.Count,
	}
}

// Peek returns the item at index if it is cached.
func (c *Controller) Peek(index uint32) *search.Item {
	if !c.hasSession {
		return nil
	}
	return c.cache.Peek(index)
}

// Fetch runs job against the engine off the loop.
func (c *Controller) Fetch(ctx context.Context, job FetchJob) FetchResult {
	items, err := c.client.Fetch(ctx, job.SessionID, job.Start, job.Count)
	return FetchResult{Job: job, Items: items, Err: err}
}

// ApplyFetch stores a fetched page. Pages of an older generation are
// dropped. It returns true when rows changed.
func (c *Controller) ApplyFetch(res FetchResult) bool {
	job := res.Job
	if job.Gen != c.cache.Generation() {
		debuglog.WithFields(map[string]any{
			"start":   job.Start,
			"gen":     job.Gen,
			"current": c.cache.Generation(),
		}).Debugf("finder: dropping stale page")
		return false
	}
	if res.Err != nil {
		debuglog.Warnf("finder: fetch start=%d: %v", job.Start, res.Err)
		c.cache.Fail(job.Gen, job.Start)
		c.setStatus(StatusForError(res.Err))
		return false
	}
	if !c.cache.Complete(job.Gen, job.Start, res.Items) {
		return false
	}
	c.presenter.RowsInvalidated(RowRange{Start: job.Start, End: job.Start + uint32(len(res.Items))})
	return true
}

func (c *Controller) setStatus(text string) {
	c.status = text
	c.presenter.StatusTextChanged(text)
}

func (c *Controller) setTitle(text string) {
	c.title = text
	c.presenter.TitleChanged(text)
}
