// Package message routes spoken strings to creatures listening for them.
package message

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/object"
)

// TalkVolume grades how far a spoken string carries.
type TalkVolume int

const (
	VolumeTalk TalkVolume = iota
	VolumeWhisper
	VolumeShout
	VolumeSilentTalk
	VolumeSilentShout
)

// String returns the volume name.
func (v TalkVolume) String() string {
	switch v {
	case VolumeTalk:
		return "talk"
	case VolumeWhisper:
		return "whisper"
	case VolumeShout:
		return "shout"
	case VolumeSilentTalk:
		return "silent-talk"
	case VolumeSilentShout:
		return "silent-shout"
	default:
		return "unknown"
	}
}

type listener struct {
	id     object.ID
	number int
}

type pending struct {
	speaker object.ID
	pattern string
	volume  TalkVolume
}

// OnMessage is called once per listener matched by a drained message.
type OnMessage func(speaker, listener object.ID, number int, volume TalkVolume)

// Bus queues spoken strings and fans them out to pattern listeners. An
// object may listen for several patterns as long as each uses a distinct
// number; re-registering the same object for the same pattern replaces the
// number.
//
// Patterns are matched as whole strings. The original data format reserves
// wildcard syntax here, but no shipped content uses it.
type Bus struct {
	logger    *zap.Logger
	listeners map[string][]listener
	queue     []pending
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger:    logger,
		listeners: make(map[string][]listener),
	}
}

// AddListener registers listenerId for the pattern. A repeated registration
// updates the number in place instead of adding a second entry.
func (b *Bus) AddListener(listenerId object.ID, pattern string, number int) {
	vec := b.listeners[pattern]
	for i := range vec {
		if vec[i].id == listenerId {
			vec[i].number = number
			return
		}
	}
	b.listeners[pattern] = append(vec, listener{id: listenerId, number: number})
}

// AddMessage queues a spoken string for the next Update.
func (b *Bus) AddMessage(speakerId object.ID, pattern string, volume TalkVolume) {
	b.queue = append(b.queue, pending{speaker: speakerId, pattern: pattern, volume: volume})
	b.logger.Debug("message queued",
		zap.Uint32("speaker", uint32(speakerId)),
		zap.String("pattern", pattern),
		zap.Stringer("volume", volume))
}

// Update drains the queue in arrival order, calling onMessage once per
// listener of each message's pattern in registration order. Messages queued
// by a callback are drained in the same pass.
func (b *Bus) Update(onMessage OnMessage) {
	for len(b.queue) > 0 {
		msg := b.queue[0]
		b.queue = b.queue[1:]
		for _, l := range b.listeners[msg.pattern] {
			onMessage(msg.speaker, l.id, l.number, msg.volume)
		}
	}
}
