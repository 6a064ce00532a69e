package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhony-martinez/proyecto-ac/internal/actuators"
	"github.com/rhony-martinez/proyecto-ac/internal/controller"
	"github.com/rhony-martinez/proyecto-ac/internal/envsim"
	"github.com/rhony-martinez/proyecto-ac/internal/input"
	"github.com/rhony-martinez/proyecto-ac/internal/logger"
	"github.com/rhony-martinez/proyecto-ac/internal/models"
	"github.com/rhony-martinez/proyecto-ac/internal/registry"
	"github.com/rhony-martinez/proyecto-ac/internal/repository"
	"github.com/rhony-martinez/proyecto-ac/internal/repository/db"
	"github.com/rhony-martinez/proyecto-ac/internal/sensors"
	"github.com/rhony-martinez/proyecto-ac/internal/service"
)

// simStepInterval is how often the simulated room advances. The thermal
// model's per-step coefficients assume roughly this cadence.
const simStepInterval = 1 * time.Second

// runDaemon wires the whole device together and drives the control loop
// until SIGINT or SIGTERM.
func runDaemon(cmd *cobra.Command) error {
	cfg, found, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sim") {
		cfg.Sim.Enabled, _ = cmd.Flags().GetBool("sim")
	}

	log := logger.Get(cfg.Log.Level)
	if !found {
		log.Infow("no config file found, running on defaults")
	}

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	repos := repository.NewRepository(conn)
	services := service.NewService(repos)

	store, err := registry.OpenFileStore(cfg.Registry.Path, cfg.Registry.Slots)
	if err != nil {
		return fmt.Errorf("open tag registry: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Errorw("failed to close tag registry", "err", cerr)
		}
	}()
	reg := registry.New(store, cfg.Registry.Slots)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reader sensors.Reader
	var sink actuators.Sink
	if cfg.Sim.Enabled {
		room := envsim.NewRoom(envsim.Config{
			Alpha:           cfg.Sim.Alpha,
			Beta:            cfg.Sim.Beta,
			OutsideTemp:     cfg.Sim.OutsideTemp,
			OutsideHumidity: cfg.Sim.HumidityOut,
			LightPct:        cfg.Sim.LightPct,
		})
		go room.Run(ctx, simStepInterval)
		reader, sink = room, room
		log.Infow("environment simulator running",
			"t_out", cfg.Sim.OutsideTemp, "alpha", cfg.Sim.Alpha, "beta", cfg.Sim.Beta)
	} else {
		reader = &sensors.Files{
			AirPath:      cfg.Sensors.AirPath,
			GlobePath:    cfg.Sensors.GlobePath,
			HumidityPath: cfg.Sensors.HumidityPath,
			LightPath:    cfg.Sensors.LightPath,
			LightMax:     cfg.Sensors.LightMax,
		}
		hw, err := actuators.NewReal(actuators.RealConfig{
			ChipName:    cfg.Pins.Chip,
			FanPin:      cfg.Pins.Fan,
			RedPin:      cfg.Pins.Red,
			GreenPin:    cfg.Pins.Green,
			BluePin:     cfg.Pins.Blue,
			BuzzerPin:   cfg.Pins.Buzzer,
			PWMChipPath: cfg.Pins.PWMChip,
			PWMChannel:  cfg.Pins.PWMChannel,
		})
		if err != nil {
			return fmt.Errorf("init actuators: %w", err)
		}
		defer func() {
			if cerr := hw.Close(); cerr != nil {
				log.Errorw("failed to release gpio lines", "err", cerr)
			}
		}()
		sink = hw
	}

	ctl := controller.New(cfg, services, reader, sink, reg, log)

	if cfg.Serial.Enabled {
		src, err := input.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud, log)
		if err != nil {
			return fmt.Errorf("open serial: %w", err)
		}
		defer src.Close()
		go src.Run(ctx, ctl.Inputs())
		log.Infow("serial command channel open", "port", cfg.Serial.Port, "baud", cfg.Serial.Baud)
	}

	if !cfg.Sim.Enabled {
		pir, err := input.OpenPIR(cfg.Pins.Chip, cfg.Pins.PIR, ctl.Inputs(), log)
		if err != nil {
			// Motion only matters for leaving ALARM; the debug channel can
			// still raise it, so a missing sensor degrades rather than fails.
			log.Warnw("motion sensing unavailable", "err", err)
		} else {
			defer pir.Close()
		}
	}

	if err := services.Record(ctx, models.EventStartup, "controller starting", nil); err != nil {
		log.Warnw("startup event not recorded", "err", err)
	}

	ticker := time.NewTicker(cfg.Tick.Interval)
	defer ticker.Stop()

	log.Infow("control loop running", "tick", cfg.Tick.Interval, "sim", cfg.Sim.Enabled)
	runErr := ctl.Run(ctx, ticker.C, time.Now)

	// The signal context is already done; give the shutdown event its own
	// brief deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := services.Record(shutdownCtx, models.EventShutdown, "controller stopped", nil); err != nil {
		log.Warnw("shutdown event not recorded", "err", err)
	}
	return runErr
}
