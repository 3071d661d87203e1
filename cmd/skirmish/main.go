// Package main runs a small scripted skirmish: two creatures trading
// scripted attacks and barks under the fixed-step simulation loop.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/config"
	"github.com/dkoller/skirmish/internal/game"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/message"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/game/projectiles"
	"github.com/dkoller/skirmish/internal/observability"
	"github.com/dkoller/skirmish/internal/script"
	"github.com/dkoller/skirmish/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	ticks := flag.Int("ticks", 0, "override simulation.max_ticks; 0 keeps the configured value")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if *ticks > 0 {
		cfg.Simulation.MaxTicks = *ticks
	}
	if cfg.Script.Trace {
		// Interpreter tracing rides the debug level.
		cfg.Logging.Level = "debug"
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	table := projectiles.DefaultTable()
	if cfg.Projectiles.TablePath != "" {
		f, err := os.Open(cfg.Projectiles.TablePath)
		if err != nil {
			logger.Fatal("opening projectile table", zap.Error(err))
		}
		table, err = projectiles.LoadTable(f)
		f.Close()
		if err != nil {
			logger.Fatal("loading projectile table", zap.Error(err))
		}
	}

	roller := dice.NewRoller(dice.NewCryptoSource(), logger)
	g := game.New(game.Options{
		Tuning:          cfg.Combat.Tuning(),
		ProjectileSpeed: cfg.Projectiles.Speed,
		Projectiles:     table,
		Random:          roller.Source(),
	}, logger)

	reg := g.Objects()
	guard := object.NewCreature(reg.NextID(), "guard", 30)
	raider := object.NewCreature(reg.NextID(), "raider", 30)
	raider.SetPosition(object.Point{X: 12})
	reg.Add(guard)
	reg.Add(raider)

	sword := object.NewItem("vibroblade", object.WieldSingleBlade, dice.MustParse("1d8"), object.DamageSlashing, 2, 2)
	pistol := object.NewItem("blaster", object.WieldBlasterPistol, dice.MustParse("2d4"), object.DamageEnergy, 1, 2)
	guard.Equip(object.SlotMainHand, sword)
	raider.Equip(object.SlotMainHand, pistol)

	g.SetMessageHandler(func(speaker, listener object.ID, number int, volume message.TalkVolume) {
		logger.Info("overheard",
			zap.Uint32("speaker", uint32(speaker)),
			zap.Uint32("listener", uint32(listener)),
			zap.Int("number", number),
			zap.String("volume", volume.String()),
		)
	})

	loadScripts(g, logger, guard.ID(), raider.ID())

	// Whoever wins the opening roll gets their orders queued first.
	if roller.D20() >= 11 {
		g.RunScript("k_raid", raider.ID(), object.InvalidID)
		g.RunScript("k_hold", guard.ID(), object.InvalidID)
	} else {
		g.RunScript("k_hold", guard.ID(), object.InvalidID)
		g.RunScript("k_raid", raider.ID(), object.InvalidID)
	}

	interval := time.Duration(cfg.Simulation.TickSeconds * float64(time.Second))
	loop := sim.NewLoop(g, interval, cfg.Simulation.TickSeconds, cfg.Simulation.MaxTicks, logger)

	done := make(chan error, 1)
	go func() { done <- loop.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		loop.Stop()
		<-done
	case err := <-done:
		if err != nil {
			logger.Fatal("simulation loop failed", zap.Error(err))
		}
	}

	logger.Info("skirmish over",
		zap.Int("guard_hp", guard.HP()),
		zap.Int("raider_hp", raider.HP()),
	)
}

// loadScripts compiles the demo behaviors in memory. The raider shouts a
// challenge, opens fire, and queues a delayed taunt; the guard listens for
// the challenge and holds a counterattack order.
func loadScripts(g *game.Game, logger *zap.Logger, guard, raider object.ID) {
	raid, err := script.NewProgramBuilder("k_raid").
		// SpeakString("intruder alert", SHOUT)
		Add(script.Instruction{Type: script.InsCONSTI, Int: int(message.VolumeShout)}).
		Add(script.Instruction{Type: script.InsCONSTS, Str: "intruder alert"}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 221, ArgCount: 2}).
		// ActionAttack(guard, FALSE)
		Add(script.Instruction{Type: script.InsCONSTI, Int: 0}).
		Add(script.Instruction{Type: script.InsCONSTO, Object: uint32(guard)}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 37, ArgCount: 2}).
		// DelayCommand(2.0, SpeakString("too slow", TALK))
		Add(script.Instruction{Type: script.InsSTORESTATE}).
		Jump(script.InsJMP, "after_taunt").
		Add(script.Instruction{Type: script.InsCONSTI, Int: int(message.VolumeTalk)}).
		Add(script.Instruction{Type: script.InsCONSTS, Str: "too slow"}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 221, ArgCount: 2}).
		Add(script.Instruction{Type: script.InsRETN}).
		Label("after_taunt").
		Add(script.Instruction{Type: script.InsCONSTF, Float: 2.0}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 7, ArgCount: 2}).
		Add(script.Instruction{Type: script.InsRETN}).
		Build()
	if err != nil {
		logger.Fatal("building raid script", zap.Error(err))
	}
	g.LoadProgram("k_raid", raid)

	hold, err := script.NewProgramBuilder("k_hold").
		// SetListenPattern(OBJECT_SELF, "intruder alert", 1)
		Add(script.Instruction{Type: script.InsCONSTI, Int: 1}).
		Add(script.Instruction{Type: script.InsCONSTS, Str: "intruder alert"}).
		Add(script.Instruction{Type: script.InsCONSTO, Object: script.ObjectSelf}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 176, ArgCount: 3}).
		// ActionAttack(raider, FALSE)
		Add(script.Instruction{Type: script.InsCONSTI, Int: 0}).
		Add(script.Instruction{Type: script.InsCONSTO, Object: uint32(raider)}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 37, ArgCount: 2}).
		Add(script.Instruction{Type: script.InsRETN}).
		Build()
	if err != nil {
		logger.Fatal("building hold script", zap.Error(err))
	}
	g.LoadProgram("k_hold", hold)
}
