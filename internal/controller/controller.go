// Package controller runs the supervision loop: it drains raw inputs, polls
// the per-visit time machines, evaluates comfort, and feeds the state
// supervisor exactly one event per tick. All side effects of a state live in
// the entry/exit hooks here; the fsm package stays pure.
package controller

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rhony-martinez/proyecto-ac/internal/actuators"
	"github.com/rhony-martinez/proyecto-ac/internal/comfort"
	"github.com/rhony-martinez/proyecto-ac/internal/config"
	"github.com/rhony-martinez/proyecto-ac/internal/credentials"
	"github.com/rhony-martinez/proyecto-ac/internal/fsm"
	"github.com/rhony-martinez/proyecto-ac/internal/input"
	"github.com/rhony-martinez/proyecto-ac/internal/logger"
	"github.com/rhony-martinez/proyecto-ac/internal/models"
	"github.com/rhony-martinez/proyecto-ac/internal/registry"
	"github.com/rhony-martinez/proyecto-ac/internal/schedule"
	"github.com/rhony-martinez/proyecto-ac/internal/sensors"
	"github.com/rhony-martinez/proyecto-ac/internal/service"
)

// Fixed behavioral constants. These define the device's character and are
// deliberately not configuration.
const (
	configuringTimeout = 5 * time.Second
	monitoringTimeout  = 7 * time.Second
	comfortLowTimeout  = 3 * time.Second
	comfortHighTimeout = 4 * time.Second

	greenBlinkOn  = 200 * time.Millisecond
	greenBlinkOff = 300 * time.Millisecond
	blueBlinkOn   = 300 * time.Millisecond
	blueBlinkOff  = 400 * time.Millisecond
	redBlinkOn    = 100 * time.Millisecond
	redBlinkOff   = 300 * time.Millisecond
	buzzerPhase   = 400 * time.Millisecond

	louvreMinDeg       = 20
	louvreMaxDeg       = 90
	louvreStepInterval = 15 * time.Millisecond

	overheatTempC = 30.0
	overheatTrips = 3

	inputQueueDepth = 64
)

// Controller owns the loop state. Everything below is touched only from the
// Run goroutine; external producers reach it solely through the input queue.
type Controller struct {
	log      *logger.Logger
	sup      *fsm.Supervisor
	reader   sensors.Reader
	sink     actuators.Sink
	registry *registry.Registry
	status   service.Status
	auditlog service.AuditLog

	inputs chan input.Input
	latch  input.Latch

	countdown *schedule.Countdown
	green     *schedule.Blinker
	blue      *schedule.Blinker
	red       *schedule.Blinker
	buzz      *schedule.Blinker
	sweep     *schedule.Sweeper

	capture *credentials.Session
	naming  *registry.NamingSession

	secret      string
	captureIdle time.Duration
	maxAttempts int
	unlockKey   byte

	metabolic   float64 // W/m²
	clothing    float64 // clo
	airVelocity float64 // m/s

	lastPMV       float64
	lastConverged bool
	fanOn         bool

	// now is the current tick's time, set at the top of every step so the
	// hooks share one consistent clock reading.
	now time.Time
}

func New(cfg config.Config, svc *service.Service, reader sensors.Reader, sink actuators.Sink, reg *registry.Registry, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		log:         log,
		reader:      reader,
		sink:        sink,
		registry:    reg,
		status:      svc.Status,
		auditlog:    svc.AuditLog,
		inputs:      make(chan input.Input, inputQueueDepth),
		secret:      cfg.Auth.Secret,
		captureIdle: cfg.Auth.CaptureIdle,
		maxAttempts: cfg.Auth.MaxAttempts,
		unlockKey:   '*',
		metabolic:   comfort.DefaultMetabolicRate,
		clothing:    cfg.Comfort.Clo,
		airVelocity: cfg.Comfort.AirVelocity,
		green:       schedule.NewBlinker(greenBlinkOn, greenBlinkOff),
		blue:        schedule.NewBlinker(blueBlinkOn, blueBlinkOff),
		red:         schedule.NewBlinker(redBlinkOn, redBlinkOff),
		buzz:        schedule.NewBlinker(buzzerPhase, buzzerPhase),
		sweep:       schedule.NewSweeper(louvreMinDeg, louvreMaxDeg, louvreStepInterval),
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 1
	}
	if k := cfg.Auth.UnlockKey; k != "" {
		c.unlockKey = k[0]
	}
	if cfg.Comfort.Met > 0 {
		c.metabolic = cfg.Comfort.Met * comfort.MetUnit
	}
	c.sup = fsm.New(log, c)
	return c
}

// Inputs is the queue external producers (serial, PIR, keypad, tag reader)
// write raw stimuli into.
func (c *Controller) Inputs() chan<- input.Input {
	return c.inputs
}

// Current returns the supervisor's present state.
func (c *Controller) Current() fsm.State {
	return c.sup.Current()
}

// Run drives the loop until ctx is canceled. The tick channel and clock are
// injected so tests control time.
func (c *Controller) Run(ctx context.Context, tick <-chan time.Time, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	if err := c.bootstrap(ctx, now()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			c.quiesce()
			return nil
		case t, ok := <-tick:
			if !ok {
				c.quiesce()
				return nil
			}
			c.step(ctx, t)
		}
	}
}

func (c *Controller) bootstrap(ctx context.Context, t time.Time) error {
	c.now = t
	if err := c.sup.Init(fsm.StateStart); err != nil {
		return err
	}
	c.persist(ctx, t)
	return nil
}

// step runs one tick in strict order: ingest raw inputs, poll timers,
// evaluate the latched event. The order makes a TIME_EXPIRED latched by a
// timer visible to the same tick's evaluation, while an externally produced
// event always outranks it.
func (c *Controller) step(ctx context.Context, now time.Time) {
	c.now = now

	for drained := false; !drained; {
		select {
		case in := <-c.inputs:
			c.ingest(ctx, in)
		default:
			drained = true
		}
	}

	c.pollTimers(ctx, now)

	ev := c.latch.Take()
	if ev == fsm.EventNone {
		return
	}
	prev := c.sup.Current()
	next, ok := c.sup.Step(ev)
	if !ok {
		return
	}
	c.afterTransition(ctx, prev, ev, next)
}

func (c *Controller) ingest(ctx context.Context, in input.Input) {
	switch in.Kind {
	case input.KindMotion:
		c.latch.Offer(fsm.EventMotionDetected)
	case input.KindCommand:
		c.command(ctx, in.Byte)
	case input.KindKey:
		c.keypad(ctx, in.Byte)
	case input.KindTag:
		c.tag(ctx, in.UID)
	}
}

// command routes one debug channel byte. While a naming session is open the
// byte belongs to the name being typed, not to the command decoder.
func (c *Controller) command(ctx context.Context, b byte) {
	if c.naming != nil {
		c.feedNaming(ctx, b)
		return
	}
	ev, ok := input.DecodeCommand(b)
	if !ok {
		c.log.Debugw("unrecognized command byte", "byte", b)
		return
	}
	c.latch.Offer(ev)
}

func (c *Controller) keypad(ctx context.Context, k byte) {
	switch c.sup.Current() {
	case fsm.StateStart:
		if c.capture == nil {
			return
		}
		done, ok := c.capture.Press(k, c.now)
		if !done {
			return
		}
		fctx := c.sup.Context()
		if ok {
			c.audit(ctx, models.EventAuthOK, "credential accepted", nil)
			c.latch.Offer(fsm.EventCredentialAccepted)
			return
		}
		fctx.FailedAttempts++
		c.audit(ctx, models.EventAuthFail,
			fmt.Sprintf("credential rejected, attempt %d of %d", fctx.FailedAttempts, c.maxAttempts), nil)
		if fctx.FailedAttempts >= c.maxAttempts {
			c.latch.Offer(fsm.EventLockCondition)
		}
	case fsm.StateLocked:
		if k == c.unlockKey {
			c.latch.Offer(fsm.EventUnlockKey)
		}
	default:
		// keys only mean something while capturing or locked
	}
}

func (c *Controller) tag(ctx context.Context, uid []byte) {
	if c.sup.Current() != fsm.StateConfiguring {
		c.log.Debugw("tag ignored outside configuration", "uid", fmt.Sprintf("%x", uid))
		return
	}
	fctx := c.sup.Context()
	if fctx.TagProcessed {
		return
	}
	fctx.TagProcessed = true

	name, known, err := c.registry.Lookup(uid)
	if err != nil {
		c.log.Errorw("registry lookup failed", "uid", fmt.Sprintf("%x", uid), "err", err)
		return
	}
	if known {
		c.audit(ctx, models.EventTagSeen, fmt.Sprintf("known tag %q", name),
			map[string]any{"uid": fmt.Sprintf("%x", uid)})
		return
	}
	c.naming = registry.NewNamingSession(uid, c.now)
	c.log.Infow("unknown tag, naming session open", "uid", fmt.Sprintf("%x", uid))
}

func (c *Controller) feedNaming(ctx context.Context, b byte) {
	done, name := c.naming.Feed(b)
	if !done {
		return
	}
	uid := c.naming.UID()
	c.naming = nil
	if err := c.registry.Store(uid, name); err != nil {
		c.log.Errorw("tag store failed", "uid", fmt.Sprintf("%x", uid), "err", err)
		return
	}
	c.audit(ctx, models.EventTagStored, fmt.Sprintf("tag registered as %q", name),
		map[string]any{"uid": fmt.Sprintf("%x", uid)})
}

func (c *Controller) pollTimers(ctx context.Context, now time.Time) {
	if c.capture != nil && c.capture.ExpireIdle(now) {
		c.log.Debugw("credential buffer wiped after idle")
	}
	if c.naming != nil && c.naming.Expired(now) {
		uid := c.naming.UID()
		c.naming = nil
		c.audit(ctx, models.EventTagTimeout, "naming session expired",
			map[string]any{"uid": fmt.Sprintf("%x", uid)})
	}

	if changed, lit := c.green.Tick(now); changed {
		c.actuate("green indicator", c.sink.Indicator(actuators.ColorGreen, lit))
	}
	if changed, lit := c.blue.Tick(now); changed {
		c.actuate("blue indicator", c.sink.Indicator(actuators.ColorBlue, lit))
	}
	if changed, lit := c.red.Tick(now); changed {
		c.actuate("red indicator", c.sink.Indicator(actuators.ColorRed, lit))
	}
	if changed, on := c.buzz.Tick(now); changed {
		c.actuate("buzzer", c.sink.Buzzer(on))
	}
	if moved, angle := c.sweep.Tick(now); moved {
		c.actuate("louvre", c.sink.Louvre(angle))
	}

	// The countdown only fires into an empty latch, and an open naming
	// session holds it: the deadline stays armed and fires on the first tick
	// after the session resolves. An external event already pending likewise
	// defers it to the next tick.
	if c.naming == nil && c.latch.Pending() == fsm.EventNone && c.countdown.Due(now) {
		if c.sup.Current() == fsm.StateMonitoring {
			c.evaluateComfort(ctx, now)
		} else {
			c.latch.Offer(fsm.EventTimeExpired)
		}
	}
}

// evaluateComfort runs when the monitoring window closes: one sensor reading,
// one PMV computation, one latched outcome.
func (c *Controller) evaluateComfort(ctx context.Context, now time.Time) {
	r, err := c.reader.Read()
	if err != nil || !r.Valid() {
		c.log.Warnw("comfort evaluation skipped, sensor fault",
			"err", err, "air_temp", r.AirTemp, "humidity", r.Humidity)
		c.audit(ctx, models.EventSensorFault, "invalid reading during comfort evaluation", nil)
		c.countdown = schedule.NewCountdown(now, monitoringTimeout)
		return
	}

	radiant := r.RadiantTemp
	if math.IsNaN(radiant) || math.IsInf(radiant, 0) {
		radiant = r.AirTemp // no globe probe, assume uniform enclosure
	}
	res := comfort.Compute(comfort.Sample{
		AirTemp:      r.AirTemp,
		RadiantTemp:  radiant,
		RelHumidity:  r.Humidity,
		AirVelocity:  c.airVelocity,
		Metabolic:    c.metabolic,
		ExternalWork: comfort.DefaultExternalWork,
		Clothing:     c.clothing,
	})
	c.lastPMV = res.PMV
	c.lastConverged = res.Converged
	if !res.Converged {
		c.log.Warnw("surface temperature solve did not converge",
			"iterations", res.Iterations, "pmv", res.PMV)
	}

	band := comfort.BandOf(res.PMV)
	c.log.Infow("comfort evaluated",
		"pmv", res.PMV, "band", band, "air_temp", r.AirTemp, "humidity", r.Humidity)

	switch band {
	case comfort.BandBelow:
		c.latch.Offer(fsm.EventComfortBelowLow)
	case comfort.BandAbove:
		c.latch.Offer(fsm.EventComfortAboveHigh)
	default:
		c.latch.Offer(fsm.EventTimeExpired)
	}
	c.persist(ctx, now)
}

func (c *Controller) afterTransition(ctx context.Context, prev fsm.State, ev fsm.Event, next fsm.State) {
	c.audit(ctx, models.EventTransition, fmt.Sprintf("%s -> %s", prev, next),
		map[string]any{"event": string(ev)})
	if next == fsm.StateComfortHigh {
		c.overheatCheck(ctx)
	}
	c.persist(ctx, c.now)
}

// overheatCheck runs on each COMFORT_HIGH entry. Three consecutive hot
// entries escalate; a cool valid reading resets the streak; an unreadable
// sensor leaves it untouched.
func (c *Controller) overheatCheck(ctx context.Context) {
	fctx := c.sup.Context()
	r, err := c.reader.Read()
	if err != nil || math.IsNaN(r.AirTemp) || math.IsInf(r.AirTemp, 0) {
		c.log.Warnw("overheat check skipped, air temperature unreadable", "err", err)
		return
	}
	if r.AirTemp <= overheatTempC {
		if fctx.OverheatCount != 0 {
			c.log.Debugw("overheat streak reset", "air_temp", r.AirTemp)
		}
		fctx.OverheatCount = 0
		return
	}
	fctx.OverheatCount++
	c.audit(ctx, models.EventOverheat,
		fmt.Sprintf("hot entry %d of %d", fctx.OverheatCount, overheatTrips),
		map[string]any{"air_temp": r.AirTemp})
	if fctx.OverheatCount >= overheatTrips {
		fctx.OverheatCount = 0
		c.latch.Offer(fsm.EventSustainedOverheat)
	}
}

// Enter implements fsm.Hooks.
func (c *Controller) Enter(fctx *fsm.Context, s fsm.State) {
	switch s {
	case fsm.StateStart:
		fctx.FailedAttempts = 0
		sess, err := credentials.NewSession(c.secret, c.now, c.captureIdle)
		if err != nil {
			c.log.Errorw("credential capture unavailable", "err", err)
		}
		c.capture = sess
	case fsm.StateConfiguring:
		fctx.TagProcessed = false
		c.countdown = schedule.NewCountdown(c.now, configuringTimeout)
	case fsm.StateMonitoring:
		c.countdown = schedule.NewCountdown(c.now, monitoringTimeout)
		if r, err := c.reader.Read(); err == nil {
			c.log.Debugw("monitoring primed", "air_temp", r.AirTemp, "humidity", r.Humidity)
		}
	case fsm.StateComfortLow:
		c.countdown = schedule.NewCountdown(c.now, comfortLowTimeout)
		c.sweep.Start(c.now)
		c.actuate("louvre", c.sink.Louvre(c.sweep.Angle()))
		c.green.Start(c.now)
		c.actuate("green indicator", c.sink.Indicator(actuators.ColorGreen, true))
	case fsm.StateComfortHigh:
		c.countdown = schedule.NewCountdown(c.now, comfortHighTimeout)
		c.actuate("fan", c.sink.Fan(true))
		c.fanOn = true
		c.blue.Start(c.now)
		c.actuate("blue indicator", c.sink.Indicator(actuators.ColorBlue, true))
	case fsm.StateAlarm:
		c.buzz.Start(c.now)
		c.actuate("buzzer", c.sink.Buzzer(true))
	case fsm.StateLocked:
		c.red.Start(c.now)
		c.actuate("red indicator", c.sink.Indicator(actuators.ColorRed, true))
	}
}

// Exit implements fsm.Hooks. Every visit's timers die with it.
func (c *Controller) Exit(fctx *fsm.Context, s fsm.State) {
	c.countdown = nil
	switch s {
	case fsm.StateStart:
		c.capture = nil
	case fsm.StateConfiguring:
		c.naming = nil
	case fsm.StateComfortLow:
		c.sweep.Stop()
		c.actuate("louvre detach", c.sink.DetachLouvre())
		c.green.Stop()
		c.actuate("green indicator", c.sink.Indicator(actuators.ColorGreen, false))
	case fsm.StateComfortHigh:
		c.blue.Stop()
		c.actuate("blue indicator", c.sink.Indicator(actuators.ColorBlue, false))
		c.actuate("fan", c.sink.Fan(false))
		c.fanOn = false
	case fsm.StateAlarm:
		c.buzz.Stop()
		c.actuate("buzzer", c.sink.Buzzer(false))
	case fsm.StateLocked:
		c.red.Stop()
		c.actuate("red indicator", c.sink.Indicator(actuators.ColorRed, false))
	}
}

// quiesce forces every output off on shutdown.
func (c *Controller) quiesce() {
	c.green.Stop()
	c.blue.Stop()
	c.red.Stop()
	c.buzz.Stop()
	c.sweep.Stop()
	c.actuate("fan", c.sink.Fan(false))
	c.actuate("red indicator", c.sink.Indicator(actuators.ColorRed, false))
	c.actuate("green indicator", c.sink.Indicator(actuators.ColorGreen, false))
	c.actuate("blue indicator", c.sink.Indicator(actuators.ColorBlue, false))
	c.actuate("buzzer", c.sink.Buzzer(false))
	c.actuate("louvre detach", c.sink.DetachLouvre())
	c.fanOn = false
	c.log.Infow("controller stopped, outputs forced off")
}

func (c *Controller) persist(ctx context.Context, now time.Time) {
	fctx := c.sup.Context()
	snap := models.StatusSnapshot{
		State:          string(c.sup.Current()),
		LastPMV:        c.lastPMV,
		PMVConverged:   c.lastConverged,
		OverheatCount:  fctx.OverheatCount,
		FailedAttempts: fctx.FailedAttempts,
		FanOn:          c.fanOn,
		UpdatedAt:      now.UTC(),
	}
	if err := c.status.Update(ctx, snap); err != nil {
		c.log.Errorw("snapshot persist failed", "err", err)
	}
}

func (c *Controller) audit(ctx context.Context, typ, description string, meta any) {
	if err := c.auditlog.Record(ctx, typ, description, meta); err != nil {
		c.log.Warnw("audit append failed", "type", typ, "err", err)
	}
}

func (c *Controller) actuate(what string, err error) {
	if err != nil {
		c.log.Warnw("actuator command failed", "what", what, "err", err)
	}
}
