// Package fsm holds the control supervisor: the device states, the discrete
// events that drive them, and the fixed hand-authored transition table. The
// table is data, not behavior; everything a state does on entry or exit is
// supplied by the caller through Hooks.
package fsm

import (
	"errors"
	"sort"

	"github.com/rhony-martinez/proyecto-ac/internal/logger"
)

// State is one of the supervisor's control states.
type State string

const (
	StateStart       State = "START"
	StateConfiguring State = "CONFIGURING"
	StateMonitoring  State = "MONITORING"
	StateComfortLow  State = "COMFORT_LOW"
	StateComfortHigh State = "COMFORT_HIGH"
	StateAlarm       State = "ALARM"
	StateLocked      State = "LOCKED"
)

// Event is a discrete stimulus. Producers latch at most one per tick; the
// supervisor consumes exactly one per Step.
type Event string

const (
	EventNone               Event = "NONE"
	EventLockCondition      Event = "LOCK_CONDITION"
	EventUnlockKey          Event = "UNLOCK_KEY"
	EventCredentialAccepted Event = "CREDENTIAL_ACCEPTED"
	EventTimeExpired        Event = "TIME_EXPIRED"
	EventComfortBelowLow    Event = "COMFORT_BELOW_LOW"
	EventComfortAboveHigh   Event = "COMFORT_ABOVE_HIGH"
	EventSustainedOverheat  Event = "SUSTAINED_OVERHEAT"
	EventMotionDetected     Event = "MOTION_DETECTED"
)

// ruleKey identifies one transition.
type ruleKey struct {
	from  State
	event Event
}

// transitions is the full rule set. One entry per (state, event) pair, so a
// matching event has exactly one destination.
var transitions = map[ruleKey]State{
	{StateStart, EventCredentialAccepted}:      StateConfiguring,
	{StateStart, EventLockCondition}:           StateLocked,
	{StateLocked, EventUnlockKey}:              StateStart,
	{StateConfiguring, EventTimeExpired}:       StateMonitoring,
	{StateMonitoring, EventComfortBelowLow}:    StateComfortLow,
	{StateMonitoring, EventComfortAboveHigh}:   StateComfortHigh,
	{StateMonitoring, EventTimeExpired}:        StateConfiguring,
	{StateComfortLow, EventTimeExpired}:        StateMonitoring,
	{StateComfortHigh, EventTimeExpired}:       StateMonitoring,
	{StateComfortHigh, EventSustainedOverheat}: StateAlarm,
	{StateAlarm, EventMotionDetected}:          StateStart,
}

// Rule is one row of the transition table.
type Rule struct {
	From  State
	Event Event
	To    State
}

// Transitions returns a copy of the rule table in a stable order.
func Transitions() []Rule {
	rules := make([]Rule, 0, len(transitions))
	for k, to := range transitions {
		rules = append(rules, Rule{From: k.from, Event: k.event, To: to})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].From != rules[j].From {
			return rules[i].From < rules[j].From
		}
		return rules[i].Event < rules[j].Event
	})
	return rules
}

// Context carries the small mutable counters shared between the supervisor
// and its entry/exit actions. One instance per supervisor, passed by
// reference, so actions never reach for package state.
type Context struct {
	FailedAttempts int  // credential attempts failed since the last START entry
	OverheatCount  int  // consecutive hot COMFORT_HIGH entries
	TagProcessed   bool // one tag registration attempt per CONFIGURING visit
}

// Hooks receives state lifecycle callbacks. Exit on the state being left
// runs before Enter on the state being entered.
type Hooks interface {
	Enter(ctx *Context, s State)
	Exit(ctx *Context, s State)
}

type nopHooks struct{}

func (nopHooks) Enter(*Context, State) {}
func (nopHooks) Exit(*Context, State)  {}

// ErrAlreadyInitialized is returned by a second Init call.
var ErrAlreadyInitialized = errors.New("fsm: supervisor already initialized")

// Supervisor owns the current state and the shared Context.
type Supervisor struct {
	log     *logger.Logger
	hooks   Hooks
	ctx     Context
	current State
	started bool
}

// New builds a supervisor. A nil logger logs nowhere; nil hooks do nothing.
func New(log *logger.Logger, hooks Hooks) *Supervisor {
	if log == nil {
		log = logger.Nop()
	}
	if hooks == nil {
		hooks = nopHooks{}
	}
	return &Supervisor{log: log, hooks: hooks}
}

// Init sets the initial state and fires its entry hook. Called exactly once.
func (s *Supervisor) Init(initial State) error {
	if s.started {
		return ErrAlreadyInitialized
	}
	s.started = true
	s.current = initial
	s.log.Infow("supervisor initialized", "state", initial)
	s.hooks.Enter(&s.ctx, initial)
	return nil
}

// Step applies at most one transition for the given event. Events with no
// rule in the current state are dropped on purpose: most inputs only mean
// something in particular states. The boolean reports whether a transition
// was taken.
func (s *Supervisor) Step(ev Event) (State, bool) {
	if ev == EventNone || ev == "" {
		return s.current, false
	}
	next, ok := transitions[ruleKey{from: s.current, event: ev}]
	if !ok {
		s.log.Debugw("event dropped", "state", s.current, "event", ev)
		return s.current, false
	}
	prev := s.current
	s.hooks.Exit(&s.ctx, prev)
	s.current = next
	s.hooks.Enter(&s.ctx, next)
	s.log.Infow("transition", "from", prev, "event", ev, "to", next)
	return next, true
}

// Current returns the present state.
func (s *Supervisor) Current() State {
	return s.current
}

// Context exposes the supervisor-owned counters to its actions.
func (s *Supervisor) Context() *Context {
	return &s.ctx
}
