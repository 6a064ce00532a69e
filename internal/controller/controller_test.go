package controller

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhony-martinez/proyecto-ac/internal/actuators"
	"github.com/rhony-martinez/proyecto-ac/internal/config"
	"github.com/rhony-martinez/proyecto-ac/internal/fsm"
	"github.com/rhony-martinez/proyecto-ac/internal/input"
	"github.com/rhony-martinez/proyecto-ac/internal/models"
	"github.com/rhony-martinez/proyecto-ac/internal/registry"
	"github.com/rhony-martinez/proyecto-ac/internal/sensors"
	"github.com/rhony-martinez/proyecto-ac/internal/service"
)

// stepInterval is the simulated tick period the rig drives the loop with.
const stepInterval = 10 * time.Millisecond

type memStatus struct {
	snaps []models.StatusSnapshot
	err   error
}

func (m *memStatus) GetStatus(_ context.Context) (models.StatusSnapshot, error) {
	if m.err != nil {
		return models.StatusSnapshot{}, m.err
	}
	return m.last(), nil
}

func (m *memStatus) Update(_ context.Context, s models.StatusSnapshot) error {
	if m.err != nil {
		return m.err
	}
	m.snaps = append(m.snaps, s)
	return nil
}

func (m *memStatus) last() models.StatusSnapshot {
	if len(m.snaps) == 0 {
		return models.StatusSnapshot{}
	}
	return m.snaps[len(m.snaps)-1]
}

type memAudit struct {
	events []models.AuditEvent
	err    error
}

func (m *memAudit) Record(_ context.Context, typ, description string, meta any) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, models.AuditEvent{Type: typ, Description: description, Metadata: meta})
	return nil
}

func (m *memAudit) List(_ context.Context, _ service.LogFilter) ([]models.AuditEvent, error) {
	return m.events, m.err
}

func (m *memAudit) ofType(typ string) []models.AuditEvent {
	var out []models.AuditEvent
	for _, e := range m.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (m *memAudit) count(typ string) int {
	return len(m.ofType(typ))
}

func testConfig() config.Config {
	return config.Config{
		Auth:    config.Auth{Secret: "147147", MaxAttempts: 1, UnlockKey: "*", CaptureIdle: 15 * time.Second},
		Comfort: config.Comfort{Met: 1.2, Clo: 0.5, AirVelocity: 0.1},
	}
}

func testReading(temp, rh float64) sensors.Reading {
	return sensors.Reading{AirTemp: temp, Humidity: rh, LightPct: 40, RadiantTemp: temp}
}

// rig drives one controller with a scripted clock: every helper below runs
// whole ticks, so each test reads as a transcript of the device's day.
type rig struct {
	t      *testing.T
	ctx    context.Context
	c      *Controller
	fake   *sensors.Fake
	rec    *actuators.Recorder
	reg    *registry.Registry
	status *memStatus
	audit  *memAudit
	now    time.Time
}

func newRig(t *testing.T, opts ...func(*config.Config)) *rig {
	t.Helper()
	cfg := testConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &rig{
		t:      t,
		ctx:    context.Background(),
		fake:   sensors.NewFake(testReading(26, 50)),
		rec:    actuators.NewRecorder(),
		reg:    registry.New(registry.NewMemStore(4), 4),
		status: &memStatus{},
		audit:  &memAudit{},
		now:    time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	svc := &service.Service{Status: r.status, AuditLog: r.audit}
	r.c = New(cfg, svc, r.fake, r.rec, r.reg, nil)
	require.NoError(t, r.c.bootstrap(r.ctx, r.now))
	return r
}

// tick advances the clock by d and runs exactly one step at the new time.
func (r *rig) tick(d time.Duration) {
	r.now = r.now.Add(d)
	r.c.step(r.ctx, r.now)
}

// run steps the loop every stepInterval until total simulated time elapses.
func (r *rig) run(total time.Duration) {
	deadline := r.now.Add(total)
	for r.now.Before(deadline) {
		r.tick(stepInterval)
	}
}

func (r *rig) key(k byte) { r.c.inputs <- input.Input{Kind: input.KindKey, Byte: k} }

func (r *rig) cmd(b byte) { r.c.inputs <- input.Input{Kind: input.KindCommand, Byte: b} }

func (r *rig) motion() { r.c.inputs <- input.Input{Kind: input.KindMotion} }

func (r *rig) scan(uid []byte) { r.c.inputs <- input.Input{Kind: input.KindTag, UID: uid} }

func (r *rig) keys(s string) {
	for i := 0; i < len(s); i++ {
		r.key(s[i])
	}
}

func (r *rig) cmds(s string) {
	for i := 0; i < len(s); i++ {
		r.cmd(s[i])
	}
}

// authenticate enters the valid code and ticks once, landing in CONFIGURING.
func (r *rig) authenticate() {
	r.t.Helper()
	r.keys("147147")
	r.tick(stepInterval)
	require.Equal(r.t, fsm.StateConfiguring, r.c.Current())
}

// toMonitoring authenticates and lets the configuration window lapse.
func (r *rig) toMonitoring() {
	r.t.Helper()
	r.authenticate()
	r.run(configuringTimeout)
	require.Equal(r.t, fsm.StateMonitoring, r.c.Current())
}

func TestController_BootstrapStartsInStart(t *testing.T) {
	r := newRig(t)

	assert.Equal(t, fsm.StateStart, r.c.Current())
	require.Len(t, r.status.snaps, 1)
	snap := r.status.last()
	assert.Equal(t, "START", snap.State)
	assert.Zero(t, snap.FailedAttempts)
	assert.Zero(t, snap.OverheatCount)
	assert.False(t, snap.FanOn)
	assert.Equal(t, r.now.UTC(), snap.UpdatedAt)
}

func TestController_CredentialAcceptedEntersConfiguring(t *testing.T) {
	r := newRig(t)

	r.keys("147147")
	r.tick(stepInterval)

	assert.Equal(t, fsm.StateConfiguring, r.c.Current())
	assert.Equal(t, 1, r.audit.count(models.EventAuthOK))
	trans := r.audit.ofType(models.EventTransition)
	require.Len(t, trans, 1)
	assert.Equal(t, "START -> CONFIGURING", trans[0].Description)
	assert.Equal(t, map[string]any{"event": "CREDENTIAL_ACCEPTED"}, trans[0].Metadata)
	assert.Equal(t, "CONFIGURING", r.status.last().State)
}

func TestController_WrongCredentialLocksAndUnlockRestarts(t *testing.T) {
	r := newRig(t)

	r.keys("000000")
	r.tick(stepInterval)

	require.Equal(t, fsm.StateLocked, r.c.Current())
	fails := r.audit.ofType(models.EventAuthFail)
	require.Len(t, fails, 1)
	assert.Equal(t, "credential rejected, attempt 1 of 1", fails[0].Description)
	assert.Equal(t, 1, r.status.last().FailedAttempts)
	assert.True(t, r.rec.Lit(actuators.ColorRed))

	// Any key that is not the unlock key is ignored while locked.
	r.key('5')
	r.tick(stepInterval)
	assert.Equal(t, fsm.StateLocked, r.c.Current())

	// Unlocking within the first blink phase forces the red indicator off
	// exactly once, from the exit action.
	r.key('*')
	r.tick(stepInterval)
	assert.Equal(t, fsm.StateStart, r.c.Current())
	assert.False(t, r.rec.Lit(actuators.ColorRed))
	assert.Equal(t, 1, r.rec.Count("red on"))
	assert.Equal(t, 1, r.rec.Count("red off"))
	assert.Zero(t, r.status.last().FailedAttempts, "START entry resets the attempt counter")

	// The capture session reopened, so a fresh code authenticates.
	r.keys("147147")
	r.tick(stepInterval)
	assert.Equal(t, fsm.StateConfiguring, r.c.Current())
}

func TestController_MaxAttemptsGrantsRetry(t *testing.T) {
	twoAttempts := func(cfg *config.Config) { cfg.Auth.MaxAttempts = 2 }

	t.Run("first failure leaves capture open", func(t *testing.T) {
		r := newRig(t, twoAttempts)

		r.keys("000000")
		r.tick(stepInterval)
		require.Equal(t, fsm.StateStart, r.c.Current())
		assert.Equal(t, 1, r.c.sup.Context().FailedAttempts)

		r.keys("147147")
		r.tick(stepInterval)
		assert.Equal(t, fsm.StateConfiguring, r.c.Current())
		// The counter survives until the next START entry.
		assert.Equal(t, 1, r.status.last().FailedAttempts)
	})

	t.Run("second failure locks", func(t *testing.T) {
		r := newRig(t, twoAttempts)

		r.keys("000000")
		r.tick(stepInterval)
		r.keys("111111")
		r.tick(stepInterval)

		assert.Equal(t, fsm.StateLocked, r.c.Current())
		fails := r.audit.ofType(models.EventAuthFail)
		require.Len(t, fails, 2)
		assert.Equal(t, "credential rejected, attempt 1 of 2", fails[0].Description)
		assert.Equal(t, "credential rejected, attempt 2 of 2", fails[1].Description)
	})
}

func TestController_IdleWipesPartialCode(t *testing.T) {
	t.Run("stale partial poisons the next attempt", func(t *testing.T) {
		r := newRig(t)

		r.keys("999")
		r.tick(stepInterval)
		r.keys("147147")
		r.tick(stepInterval)

		// The first three fresh keys completed "999147" and failed.
		assert.Equal(t, fsm.StateLocked, r.c.Current())
	})

	t.Run("idle expiry clears the buffer", func(t *testing.T) {
		r := newRig(t)

		r.keys("999")
		r.tick(stepInterval)
		r.run(15 * time.Second)
		require.Equal(t, fsm.StateStart, r.c.Current())

		r.keys("147147")
		r.tick(stepInterval)
		assert.Equal(t, fsm.StateConfiguring, r.c.Current())
		assert.Zero(t, r.audit.count(models.EventAuthFail), "a wiped partial never completes an attempt")
	})
}

func TestController_ConfiguringWindowExpiresToMonitoring(t *testing.T) {
	r := newRig(t)
	r.authenticate()

	// The transition lands on the very tick the window closes: the latched
	// TIME_EXPIRED is consumed by the same cycle that raised it.
	r.run(configuringTimeout)

	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	assert.Zero(t, r.status.last().LastPMV, "no comfort evaluation ran yet")
}

func TestController_ComfortEvaluationBands(t *testing.T) {
	tests := []struct {
		name    string
		reading sensors.Reading
		want    fsm.State
		pmvLo   float64
		pmvHi   float64
	}{
		{"cold room dips", testReading(18, 50), fsm.StateComfortLow, -3, -1},
		{"hot room rises", testReading(33, 50), fsm.StateComfortHigh, 1, 3},
		{"neutral room cycles back", testReading(26, 50), fsm.StateConfiguring, -1, 1},
		{
			// A dead globe probe degrades to uniform air temperature.
			"hot room without globe probe",
			sensors.Reading{AirTemp: 33, Humidity: 50, LightPct: math.NaN(), RadiantTemp: math.NaN()},
			fsm.StateComfortHigh, 1, 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.fake.Set(tt.reading)
			r.toMonitoring()

			r.run(monitoringTimeout)

			assert.Equal(t, tt.want, r.c.Current())
			snap := r.status.last()
			assert.True(t, snap.PMVConverged)
			assert.Greater(t, snap.LastPMV, tt.pmvLo)
			assert.Less(t, snap.LastPMV, tt.pmvHi)
		})
	}
}

func TestController_ComfortLowVisitSweepsAndReleases(t *testing.T) {
	r := newRig(t)
	r.fake.Set(testReading(18, 50))
	r.toMonitoring()
	r.run(monitoringTimeout)
	require.Equal(t, fsm.StateComfortLow, r.c.Current())
	assert.True(t, r.rec.Lit(actuators.ColorGreen))
	assert.True(t, r.rec.Attached())
	assert.Equal(t, 1, r.rec.Count("louvre 20"), "sweep starts at the lower limit")

	r.run(comfortLowTimeout)

	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	// Three seconds at one degree per 15ms walks 20..90 and bounces back.
	moves := r.rec.Count("louvre") - r.rec.Count("louvre detach")
	assert.Greater(t, moves, 150)
	assert.Equal(t, 1, r.rec.Count("louvre 90"), "reached the upper limit once")
	assert.Equal(t, 2, r.rec.Count("louvre 20"), "bounced off the lower limit once")
	assert.Equal(t, 1, r.rec.Count("louvre detach"))
	assert.False(t, r.rec.Attached(), "exit releases the servo")
	assert.False(t, r.rec.Lit(actuators.ColorGreen))
	assert.GreaterOrEqual(t, r.rec.Count("green on"), 3, "indicator blinked during the visit")
}

func TestController_ComfortHighVisitRunsFanOnce(t *testing.T) {
	r := newRig(t)
	r.fake.Set(testReading(33, 50))
	r.toMonitoring()
	r.run(monitoringTimeout)
	require.Equal(t, fsm.StateComfortHigh, r.c.Current())
	assert.True(t, r.rec.FanOn())
	assert.True(t, r.rec.Lit(actuators.ColorBlue))
	snap := r.status.last()
	assert.Equal(t, "COMFORT_HIGH", snap.State)
	assert.True(t, snap.FanOn)
	assert.Equal(t, 1, snap.OverheatCount, "a hot entry counts toward the streak")

	r.run(comfortHighTimeout)

	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	assert.False(t, r.rec.FanOn())
	assert.Equal(t, 1, r.rec.Count("fan on"))
	assert.Equal(t, 1, r.rec.Count("fan off"))
	assert.False(t, r.rec.Lit(actuators.ColorBlue))
	assert.GreaterOrEqual(t, r.rec.Count("blue on"), 2)
	assert.False(t, r.status.last().FanOn)
}

func TestController_SustainedOverheatEscalatesToAlarm(t *testing.T) {
	r := newRig(t)
	r.fake.Set(testReading(33, 50))
	r.toMonitoring()

	// Two full hot visits, then the third entry completes the streak.
	r.run(monitoringTimeout)
	r.run(comfortHighTimeout)
	r.run(monitoringTimeout)
	r.run(comfortHighTimeout)
	r.run(monitoringTimeout)
	require.Equal(t, fsm.StateComfortHigh, r.c.Current())

	hot := r.audit.ofType(models.EventOverheat)
	require.Len(t, hot, 3)
	assert.Equal(t, "hot entry 1 of 3", hot[0].Description)
	assert.Equal(t, "hot entry 2 of 3", hot[1].Description)
	assert.Equal(t, "hot entry 3 of 3", hot[2].Description)

	// The escalation latched on entry is consumed by the next tick.
	r.tick(stepInterval)
	require.Equal(t, fsm.StateAlarm, r.c.Current())
	assert.True(t, r.rec.BuzzerOn())
	assert.False(t, r.rec.FanOn(), "leaving COMFORT_HIGH stops the fan")
	assert.Zero(t, r.status.last().OverheatCount, "the streak resets when it escalates")

	trans := r.audit.ofType(models.EventTransition)
	require.NotEmpty(t, trans)
	alarm := trans[len(trans)-1]
	assert.Equal(t, "COMFORT_HIGH -> ALARM", alarm.Description)
	assert.Equal(t, map[string]any{"event": "SUSTAINED_OVERHEAT"}, alarm.Metadata)

	// Only motion clears the alarm; the buzzer dies with the state.
	r.motion()
	r.tick(stepInterval)
	assert.Equal(t, fsm.StateStart, r.c.Current())
	assert.False(t, r.rec.BuzzerOn())

	// Back at START the capture session is live again.
	r.keys("147147")
	r.tick(stepInterval)
	assert.Equal(t, fsm.StateConfiguring, r.c.Current())
}

func TestController_CoolEntryResetsOverheatStreak(t *testing.T) {
	r := newRig(t)
	r.fake.Set(testReading(33, 50))
	r.toMonitoring()

	r.run(monitoringTimeout)
	require.Equal(t, fsm.StateComfortHigh, r.c.Current())
	require.Equal(t, 1, r.c.sup.Context().OverheatCount)
	r.run(comfortHighTimeout)

	// Still above the comfort band but exactly at the overheat threshold:
	// the entry is hot enough to transition yet cool enough to reset.
	r.fake.Set(testReading(30, 50))
	r.run(monitoringTimeout)
	require.Equal(t, fsm.StateComfortHigh, r.c.Current())
	assert.Zero(t, r.c.sup.Context().OverheatCount)
	assert.Equal(t, 1, r.audit.count(models.EventOverheat))
	r.run(comfortHighTimeout)

	// The streak restarts from one, it does not resume from two.
	r.fake.Set(testReading(33, 50))
	r.run(monitoringTimeout)
	require.Equal(t, fsm.StateComfortHigh, r.c.Current())
	assert.Equal(t, 1, r.c.sup.Context().OverheatCount)
	hot := r.audit.ofType(models.EventOverheat)
	require.Len(t, hot, 2)
	assert.Equal(t, "hot entry 1 of 3", hot[1].Description)
}

func TestController_SensorFaultSkipsEvaluation(t *testing.T) {
	r := newRig(t)
	r.toMonitoring()

	// A read error skips the evaluation and re-arms the window.
	r.fake.SetErr(errors.New("i2c bus stuck"))
	r.run(monitoringTimeout)
	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	assert.Equal(t, 1, r.audit.count(models.EventSensorFault))

	// So does a reading with the mandatory fields missing.
	r.fake.SetErr(nil)
	r.fake.Set(sensors.Invalid())
	r.run(monitoringTimeout)
	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	assert.Equal(t, 2, r.audit.count(models.EventSensorFault))

	// A good reading on the re-armed window evaluates normally.
	r.fake.Set(testReading(33, 50))
	r.run(monitoringTimeout)
	assert.Equal(t, fsm.StateComfortHigh, r.c.Current())
}

func TestController_ExternalEventOutranksCountdown(t *testing.T) {
	t.Run("external event wins the tick", func(t *testing.T) {
		r := newRig(t)
		r.fake.Set(testReading(33, 50))
		r.toMonitoring()
		r.run(monitoringTimeout - stepInterval)

		// The debug event lands on the same tick the window closes. The
		// evaluation never runs: a hot room still ends up in COMFORT_LOW.
		r.cmd('4')
		r.tick(stepInterval)

		assert.Equal(t, fsm.StateComfortLow, r.c.Current())
		assert.Zero(t, r.status.last().LastPMV)
	})

	t.Run("deferred deadline fires next tick", func(t *testing.T) {
		r := newRig(t)
		r.toMonitoring()
		r.run(monitoringTimeout - stepInterval)

		// LOCK_CONDITION has no rule in MONITORING; it occupies the latch
		// and is dropped, but the held deadline is not lost.
		r.cmd('0')
		r.tick(stepInterval)
		require.Equal(t, fsm.StateMonitoring, r.c.Current())

		r.tick(stepInterval)
		assert.Equal(t, fsm.StateConfiguring, r.c.Current(), "neutral evaluation cycled back")
	})
}

func TestController_CommandBytesDriveEvents(t *testing.T) {
	r := newRig(t)
	r.toMonitoring()

	r.cmd('5')
	r.tick(stepInterval)
	require.Equal(t, fsm.StateComfortHigh, r.c.Current())
	assert.True(t, r.rec.FanOn())

	// Bytes outside '0'..'7' are not commands.
	r.cmd('x')
	r.tick(stepInterval)
	assert.Equal(t, fsm.StateComfortHigh, r.c.Current())

	r.cmd('3')
	r.tick(stepInterval)
	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	assert.False(t, r.rec.FanOn())
}

func TestController_KnownTagAuditedOncePerVisit(t *testing.T) {
	r := newRig(t)
	uid := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, r.reg.Store(uid, "sala juntas"))
	r.authenticate()

	r.scan(uid)
	r.tick(stepInterval)
	seen := r.audit.ofType(models.EventTagSeen)
	require.Len(t, seen, 1)
	assert.Equal(t, `known tag "sala juntas"`, seen[0].Description)

	// A second scan in the same visit is ignored.
	r.scan(uid)
	r.tick(stepInterval)
	assert.Equal(t, 1, r.audit.count(models.EventTagSeen))

	// The next CONFIGURING visit accepts the tag again.
	r.run(configuringTimeout)
	require.Equal(t, fsm.StateMonitoring, r.c.Current())
	r.run(monitoringTimeout)
	require.Equal(t, fsm.StateConfiguring, r.c.Current())
	r.scan(uid)
	r.tick(stepInterval)
	assert.Equal(t, 2, r.audit.count(models.EventTagSeen))
}

func TestController_UnknownTagNamingCommitStores(t *testing.T) {
	r := newRig(t)
	uid := []byte{0x04, 0xA3, 0x7F, 0x10, 0x22}
	r.authenticate()

	r.scan(uid)
	r.tick(stepInterval)
	require.NotNil(t, r.c.naming, "unknown tag opens a naming session")

	// Name bytes arrive on the command channel; the digit inside the name
	// must feed the session, not the event decoder.
	r.cmds("sala 2")
	r.cmd('#')
	r.tick(stepInterval)

	assert.Nil(t, r.c.naming)
	assert.Equal(t, 1, r.audit.count(models.EventTagStored))
	name, ok, err := r.reg.Lookup(uid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sala 2", name)
}

func TestController_NamingHoldsConfiguringWindow(t *testing.T) {
	r := newRig(t)
	uid := []byte{0x11, 0x22, 0x33}
	r.authenticate()

	r.scan(uid)
	r.tick(stepInterval)
	require.NotNil(t, r.c.naming)

	// Five seconds pass with the session open: the window does not close.
	r.run(configuringTimeout)
	require.Equal(t, fsm.StateConfiguring, r.c.Current())

	// The commit resolves the session and the held deadline fires in the
	// same cycle, so the visit moves on immediately.
	r.cmds("comedor")
	r.cmd('#')
	r.tick(stepInterval)

	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	assert.Equal(t, 1, r.audit.count(models.EventTagStored))
}

func TestController_NamingWatchdogCancels(t *testing.T) {
	r := newRig(t)
	uid := []byte{0x77, 0x88}
	r.authenticate()

	r.scan(uid)
	r.tick(stepInterval)
	require.NotNil(t, r.c.naming)

	// Nobody types a name. The watchdog cancels the attempt, and the held
	// window deadline fires in the same cycle.
	r.run(registry.NamingTimeout)

	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
	assert.Equal(t, 1, r.audit.count(models.EventTagTimeout))
	assert.Zero(t, r.audit.count(models.EventTagStored))
	_, ok, err := r.reg.Lookup(uid)
	require.NoError(t, err)
	assert.False(t, ok, "a canceled attempt stores nothing")
}

func TestController_TagIgnoredOutsideConfiguring(t *testing.T) {
	r := newRig(t)

	r.scan([]byte{0x01, 0x02})
	r.tick(stepInterval)

	assert.Equal(t, fsm.StateStart, r.c.Current())
	assert.Nil(t, r.c.naming)
	assert.Zero(t, r.audit.count(models.EventTagSeen))
	assert.Zero(t, r.audit.count(models.EventTagStored))
}

func TestController_PersistenceFailuresDoNotStopControl(t *testing.T) {
	r := newRig(t)
	r.status.err = errors.New("disk full")
	r.audit.err = errors.New("disk full")

	r.keys("147147")
	r.tick(stepInterval)

	assert.Equal(t, fsm.StateConfiguring, r.c.Current())
	r.run(configuringTimeout)
	assert.Equal(t, fsm.StateMonitoring, r.c.Current())
}

func TestController_RunQuiesceForcesOutputsOff(t *testing.T) {
	cfg := testConfig()
	fake := sensors.NewFake(testReading(26, 50))
	rec := actuators.NewRecorder()
	reg := registry.New(registry.NewMemStore(4), 4)
	status := &memStatus{}
	c := New(cfg, &service.Service{Status: status, AuditLog: &memAudit{}}, fake, rec, reg, nil)

	start := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	tick := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, tick, func() time.Time { return start }) }()

	for i := 1; i <= 3; i++ {
		tick <- start.Add(time.Duration(i) * stepInterval)
	}
	cancel()
	require.NoError(t, <-done)

	// Nothing was ever switched on, so the journal is exactly the shutdown
	// force-off sequence.
	assert.Equal(t, []string{
		"fan off", "red off", "green off", "blue off", "buzzer off", "louvre detach",
	}, rec.Journal())
	assert.False(t, rec.FanOn())
	assert.False(t, rec.Attached())
	require.Len(t, status.snaps, 1)
	assert.Equal(t, "START", status.snaps[0].State)
}
