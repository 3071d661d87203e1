// Package game wires the object registry, the combat ledger, the action
// queues, the message bus and the script runtime into one simulation.
package game

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/action"
	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/message"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/game/projectiles"
	"github.com/dkoller/skirmish/internal/game/routine"
	"github.com/dkoller/skirmish/internal/script"
)

// Options tunes a new Game. Zero values fall back to defaults.
type Options struct {
	Tuning          combat.Tuning
	ProjectileSpeed float32
	Projectiles     *projectiles.Table
	Random          dice.Source
	AnimationNames  func(index int) string
}

// Game owns one running simulation and drives it tick by tick.
type Game struct {
	logger  *zap.Logger
	objects *object.Registry
	combat  *combat.Combat
	bus     *message.Bus
	runner  *Runner

	services *action.Services
	routines *routine.Registry

	queues    map[object.ID]*action.Queue
	programs  map[string]*script.Program
	onMessage message.OnMessage
}

// New assembles a game.
func New(opts Options, logger *zap.Logger) *Game {
	if opts.Tuning == (combat.Tuning{}) {
		opts.Tuning = combat.DefaultTuning()
	}
	if opts.ProjectileSpeed <= 0 {
		opts.ProjectileSpeed = 16
	}
	if opts.Projectiles == nil {
		opts.Projectiles = projectiles.DefaultTable()
	}
	if opts.Random == nil {
		opts.Random = dice.NewCryptoSource()
	}

	g := &Game{
		logger:   logger,
		objects:  object.NewRegistry(),
		bus:      message.NewBus(logger),
		queues:   make(map[object.ID]*action.Queue),
		programs: make(map[string]*script.Program),
	}

	g.runner = &Runner{game: g, logger: logger}
	g.combat = combat.New(opts.Tuning, g.objects, g.runner, logger)

	g.services = &action.Services{
		Objects:         g.objects,
		Combat:          g.combat,
		Resolver:        combat.NewResolver(opts.Random, logger),
		Runner:          g.runner,
		Projectiles:     opts.Projectiles,
		Random:          opts.Random,
		ProjectileSpeed: opts.ProjectileSpeed,
		AnimationNames:  opts.AnimationNames,
		Logger:          logger,
	}
	g.routines = routine.NewRegistry(g, g.services, opts.Random, logger)

	g.onMessage = func(speaker, listener object.ID, number int, volume message.TalkVolume) {
		logger.Debug("message heard",
			zap.Uint32("speaker", uint32(speaker)),
			zap.Uint32("listener", uint32(listener)),
			zap.Int("number", number),
			zap.Stringer("volume", volume))
	}

	return g
}

// Objects returns the object registry.
func (g *Game) Objects() *object.Registry { return g.objects }

// Combat returns the combat ledger.
func (g *Game) Combat() *combat.Combat { return g.combat }

// Bus returns the message bus.
func (g *Game) Bus() *message.Bus { return g.bus }

// Actions returns the shared action service set.
func (g *Game) Actions() *action.Services { return g.services }

// Routines returns the routine table for script execution.
func (g *Game) Routines() script.Routines { return g.routines }

// Queue returns the action queue of an object, creating it on first use.
func (g *Game) Queue(id object.ID) *action.Queue {
	q, ok := g.queues[id]
	if !ok {
		q = action.NewQueue(g.logger)
		g.queues[id] = q
	}
	return q
}

// LoadProgram registers a compiled script program under its resource name,
// replacing any previous program of that name.
func (g *Game) LoadProgram(resref string, program *script.Program) {
	g.programs[resref] = program
}

// RunScript executes a registered program on behalf of caller. Missing
// programs are a content gap, not an error.
func (g *Game) RunScript(resref string, caller, triggerrer object.ID) {
	g.runner.Run(resref, caller, triggerrer)
}

// SetMessageHandler replaces the callback invoked for every matched
// listener when the bus drains.
func (g *Game) SetMessageHandler(fn message.OnMessage) { g.onMessage = fn }

// Update advances the simulation by dt seconds: combat rounds first so
// turn grants precede action execution, then every creature's action queue,
// then the message bus, then stance cool-downs.
func (g *Game) Update(dt float64) {
	g.combat.Update(dt)

	g.objects.Each(func(obj object.Object) {
		creature, ok := obj.(*object.Creature)
		if !ok {
			return
		}
		if q, ok := g.queues[creature.ID()]; ok {
			q.Update(creature, dt)
		}
	})

	g.bus.Update(g.onMessage)

	g.objects.Each(func(obj object.Object) {
		if creature, ok := obj.(*object.Creature); ok {
			creature.UpdateStance(dt)
		}
	})
}
