package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/moviechain-backend/internal/apperror"
	"github.com/rocketscienceinc/moviechain-backend/internal/debounce"
	"github.com/rocketscienceinc/moviechain-backend/internal/entity"
	"github.com/rocketscienceinc/moviechain-backend/internal/timer"
)

const inboxSize = 16

type resolver interface {
	Resolve(ctx context.Context, role entity.Role, query string) (entity.Entity, error)
}

type creditFetcher interface {
	FetchCredits(ctx context.Context, role entity.Role, id int) (entity.CreditSet, error)
}

type suggester interface {
	Suggest(ctx context.Context, role entity.Role, query string) ([]entity.Suggestion, error)
}

type SessionConfig struct {
	RoundSeconds  int
	TickInterval  time.Duration
	DebounceQuiet time.Duration
}

// Snapshot is what observers of a session see after every change.
type Snapshot struct {
	State       entity.GameState
	Suggestions []entity.Suggestion
}

type submitResult struct {
	state entity.GameState
	err   error
}

type (
	submitEvent struct {
		text  string
		reply chan submitResult
	}
	inputEvent struct {
		text string
	}
	resetEvent struct {
		reply chan entity.GameState
	}
	tickEvent struct {
		tick timer.Tick
	}
	emittedEvent struct {
		text string
	}
	resolvedEvent struct {
		generation uint64
		resolved   entity.Entity
		err        error
	}
	fetchedEvent struct {
		generation uint64
		accepted   entity.Entity
		credits    entity.CreditSet
		err        error
	}
	suggestedEvent struct {
		generation  uint64
		role        entity.Role
		query       string
		suggestions []entity.Suggestion
		err         error
	}
)

// Session runs one game. A single goroutine owns the game state; commands,
// lookup completions, timer ticks and debounce emissions all reach it through
// the inbox.
type Session struct {
	logger *slog.Logger
	id     string
	conf   SessionConfig
	clock  clockwork.Clock

	resolver  resolver
	credits   creditFetcher
	suggester suggester

	timer     *timer.RoundTimer
	debouncer *debounce.Debouncer

	inbox     chan any
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by the loop goroutine
	state       entity.GameState
	suggestions []entity.Suggestion
	latestInput string
	timerEpoch  uint64
	rootCtx     context.Context
	rootCancel  context.CancelFunc
	genCtx      context.Context
	genCancel   context.CancelFunc
	waiting     chan submitResult

	mu          sync.RWMutex
	published   Snapshot
	lastActive  time.Time
	subscribers map[int]chan Snapshot
	nextSubID   int
	closed      bool
}

func NewSession(logger *slog.Logger, id string, conf SessionConfig, clk clockwork.Clock,
	resolver resolver, credits creditFetcher, suggester suggester,
) *Session {
	rootCtx, rootCancel := context.WithCancel(context.Background())

	that := &Session{
		logger:      logger.With("component", "session", "game_id", id),
		id:          id,
		conf:        conf,
		clock:       clk,
		resolver:    resolver,
		credits:     credits,
		suggester:   suggester,
		inbox:       make(chan any, inboxSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		state:       entity.NewGameState(id, conf.RoundSeconds),
		suggestions: []entity.Suggestion{},
		rootCtx:     rootCtx,
		rootCancel:  rootCancel,
		lastActive:  clk.Now(),
		subscribers: make(map[int]chan Snapshot),
	}

	that.genCtx, that.genCancel = context.WithCancel(rootCtx)

	onTick := func(tick timer.Tick) { that.post(tickEvent{tick: tick}) }
	that.timer = timer.New(clk, conf.TickInterval, onTick, onTick)
	that.debouncer = debounce.New(clk, conf.DebounceQuiet, func(text string) { that.post(emittedEvent{text: text}) })

	that.published = that.snapshot()
	that.timerEpoch = that.timer.Restart(conf.RoundSeconds)

	go that.run()

	return that
}

func (that *Session) ID() string {
	return that.id
}

// State returns the latest published game state.
func (that *Session) State() entity.GameState {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.published.State
}

func (that *Session) Snapshot() Snapshot {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.published
}

func (that *Session) LastActive() time.Time {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.lastActive
}

// Submit hands a free-text answer to the game and waits until the lookup
// pipeline has settled it. Empty answers are ignored without a transition.
func (that *Session) Submit(ctx context.Context, text string) (entity.GameState, error) {
	that.touch()

	query := entity.NormalizeSubmission(text)
	if query == "" {
		return that.State(), apperror.ErrEmptySubmission
	}

	reply := make(chan submitResult, 1)
	if !that.post(submitEvent{text: query, reply: reply}) {
		return that.State(), apperror.ErrGameNotFound
	}

	select {
	case result := <-reply:
		return result.state, result.err
	case <-ctx.Done():
		return that.State(), ctx.Err()
	case <-that.done:
		return that.State(), apperror.ErrSubmissionDiscarded
	}
}

// Input feeds raw autocomplete text. Suggestions follow after the quiet period.
func (that *Session) Input(text string) error {
	that.touch()

	if !that.post(inputEvent{text: text}) {
		return apperror.ErrGameNotFound
	}

	return nil
}

// Reset starts a new round and discards anything still in flight.
func (that *Session) Reset(ctx context.Context) (entity.GameState, error) {
	that.touch()

	reply := make(chan entity.GameState, 1)
	if !that.post(resetEvent{reply: reply}) {
		return that.State(), apperror.ErrGameNotFound
	}

	select {
	case state := <-reply:
		return state, nil
	case <-ctx.Done():
		return that.State(), ctx.Err()
	case <-that.done:
		return that.State(), apperror.ErrGameNotFound
	}
}

// Subscribe returns a channel that always holds the most recent snapshot.
// Slow readers skip intermediate snapshots.
func (that *Session) Subscribe() (<-chan Snapshot, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if that.closed {
		close(ch)
		return ch, func() {}
	}

	id := that.nextSubID
	that.nextSubID++
	that.subscribers[id] = ch
	ch <- that.published

	return ch, func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if sub, ok := that.subscribers[id]; ok {
			delete(that.subscribers, id)
			close(sub)
		}
	}
}

// Close stops the loop, the timer and the debouncer, and cancels any lookup.
func (that *Session) Close() {
	that.closeOnce.Do(func() {
		close(that.quit)
	})
	<-that.done
}

func (that *Session) touch() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastActive = that.clock.Now()
}

func (that *Session) post(event any) bool {
	select {
	case <-that.quit:
		return false
	default:
	}

	select {
	case that.inbox <- event:
		return true
	case <-that.quit:
		return false
	}
}

func (that *Session) run() {
	defer close(that.done)
	defer that.shutdown()

	for {
		select {
		case <-that.quit:
			return
		case event := <-that.inbox:
			that.handle(event)
		}
	}
}

func (that *Session) handle(event any) {
	switch ev := event.(type) {
	case submitEvent:
		that.onSubmit(ev)
	case resolvedEvent:
		that.onResolved(ev)
	case fetchedEvent:
		that.onFetched(ev)
	case tickEvent:
		that.onTick(ev)
	case resetEvent:
		that.onReset(ev)
	case inputEvent:
		that.onInput(ev)
	case emittedEvent:
		that.onEmitted(ev)
	case suggestedEvent:
		that.onSuggested(ev)
	default:
		that.logger.Error("unknown event", "event", event)
	}
}

func (that *Session) onSubmit(ev submitEvent) {
	log := that.logger.With("method", "onSubmit")

	if err := that.state.ConfirmAcceptingInput(); err != nil {
		ev.reply <- submitResult{state: that.state, err: err}
		return
	}

	that.state = that.state.BeginLookup()
	that.waiting = ev.reply
	that.publish()

	generation, role := that.state.Generation, that.state.Turn
	ctx := that.genCtx

	log.Debug("resolving submission", "role", role, "query", ev.text)

	go func() {
		resolved, err := that.resolver.Resolve(ctx, role, ev.text)
		that.post(resolvedEvent{generation: generation, resolved: resolved, err: err})
	}()
}

func (that *Session) onResolved(ev resolvedEvent) {
	log := that.logger.With("method", "onResolved")

	if that.isStale(ev.generation) {
		log.Debug("discarding stale resolution", "generation", ev.generation)
		return
	}

	switch {
	case errors.Is(ev.err, apperror.ErrNotFound):
		that.state = that.state.Unresolved()
		that.publish()
		that.answer(apperror.ErrNotFound)
		return
	case ev.err != nil:
		log.Error("failed to resolve submission", "error", ev.err)
		that.fail(ev.err)
		return
	}

	next, err := that.state.Evaluate(ev.resolved)
	if errors.Is(err, apperror.ErrWrongAnswer) {
		that.state = next
		that.endRound()
		that.publish()
		that.answer(apperror.ErrWrongAnswer)
		return
	}

	if err != nil {
		log.Error("failed to evaluate submission", "error", err)
		that.state = that.state.Unresolved()
		that.publish()
		that.answer(err)
		return
	}

	generation, ctx := that.state.Generation, that.genCtx

	go func() {
		credits, err := that.credits.FetchCredits(ctx, ev.resolved.Role, ev.resolved.ID)
		that.post(fetchedEvent{generation: generation, accepted: ev.resolved, credits: credits, err: err})
	}()
}

func (that *Session) onFetched(ev fetchedEvent) {
	log := that.logger.With("method", "onFetched")

	if that.isStale(ev.generation) {
		log.Debug("discarding stale credits", "generation", ev.generation)
		return
	}

	if ev.err != nil {
		log.Error("failed to fetch credits", "error", ev.err)
		that.fail(ev.err)
		return
	}

	that.state = that.state.Commit(ev.accepted, ev.credits, that.conf.RoundSeconds)
	that.timerEpoch = that.timer.Restart(that.conf.RoundSeconds)
	that.dropInput()
	that.publish()
	that.answer(nil)

	log.Info("answer accepted", "score", that.state.Score, "turn", that.state.Turn)
}

func (that *Session) onTick(ev tickEvent) {
	if ev.tick.Epoch != that.timerEpoch || that.state.Terminal {
		return
	}

	that.state = that.state.Tick(ev.tick.Remaining)

	if that.state.Terminal {
		that.logger.Info("round timed out", "score", that.state.Score)
		that.endRound()
		that.publish()
		that.answer(apperror.ErrTimeout)
		return
	}

	that.publish()
}

func (that *Session) onReset(ev resetEvent) {
	that.answer(apperror.ErrSubmissionDiscarded)

	that.genCancel()
	that.state = that.state.Reset(that.conf.RoundSeconds)
	that.genCtx, that.genCancel = context.WithCancel(that.rootCtx)

	that.dropInput()
	that.timerEpoch = that.timer.Restart(that.conf.RoundSeconds)
	that.publish()

	that.logger.Info("round reset", "generation", that.state.Generation)

	ev.reply <- that.state
}

func (that *Session) onInput(ev inputEvent) {
	that.latestInput = ev.text

	if strings.TrimSpace(ev.text) == "" {
		that.debouncer.Stop()
		that.clearSuggestions()
		that.publish()
		return
	}

	that.debouncer.Push(ev.text)
}

func (that *Session) onEmitted(ev emittedEvent) {
	if ev.text != that.latestInput {
		return
	}

	generation, role, ctx := that.state.Generation, that.state.Turn, that.genCtx

	go func() {
		suggestions, err := that.suggester.Suggest(ctx, role, ev.text)
		that.post(suggestedEvent{
			generation:  generation,
			role:        role,
			query:       ev.text,
			suggestions: suggestions,
			err:         err,
		})
	}()
}

func (that *Session) onSuggested(ev suggestedEvent) {
	if ev.generation != that.state.Generation || ev.query != that.latestInput || ev.role != that.state.Turn {
		return
	}

	if ev.err != nil {
		that.logger.Warn("failed to fetch suggestions", "query", ev.query, "error", ev.err)
		ev.suggestions = []entity.Suggestion{}
	}

	that.suggestions = ev.suggestions
	that.publish()
}

// isStale reports whether a lookup completion no longer applies: it was issued
// under an older generation, or the round has already ended.
func (that *Session) isStale(generation uint64) bool {
	return generation != that.state.Generation || that.state.Terminal || !that.state.Pending
}

func (that *Session) fail(cause error) {
	that.state = that.state.Fail(cause)
	that.endRound()
	that.publish()
	that.answer(cause)
}

// endRound stops everything that could still touch a finished round.
func (that *Session) endRound() {
	that.timer.Stop()
	that.genCancel()
	that.dropInput()
}

// dropInput forgets the typed text so a pending emission or suggestion
// lookup for it cannot land after the turn has moved on.
func (that *Session) dropInput() {
	that.debouncer.Stop()
	that.latestInput = ""
	that.clearSuggestions()
}

func (that *Session) clearSuggestions() {
	that.suggestions = []entity.Suggestion{}
}

func (that *Session) answer(err error) {
	if that.waiting == nil {
		return
	}

	that.waiting <- submitResult{state: that.state, err: err}
	that.waiting = nil
}

func (that *Session) snapshot() Snapshot {
	suggestions := make([]entity.Suggestion, len(that.suggestions))
	copy(suggestions, that.suggestions)

	return Snapshot{State: that.state, Suggestions: suggestions}
}

func (that *Session) publish() {
	snap := that.snapshot()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.published = snap
	for _, ch := range that.subscribers {
		select {
		case <-ch:
		default:
		}

		select {
		case ch <- snap:
		default:
		}
	}
}

func (that *Session) shutdown() {
	that.timer.Stop()
	that.debouncer.Stop()
	that.rootCancel()
	that.answer(apperror.ErrSubmissionDiscarded)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true
	for id, ch := range that.subscribers {
		delete(that.subscribers, id)
		close(ch)
	}

	that.logger.Debug("session closed")
}
