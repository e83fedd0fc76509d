package mapper

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Signals for mapper events.
var (
	SignalStored = capitan.NewSignal("transcoder.mapper.stored", "State converted to stored event")
	SignalLoaded = capitan.NewSignal("transcoder.mapper.loaded", "Stored event converted to state")
)

// Keys for typed event data.
var (
	KeyTopic      = capitan.NewStringKey("topic")
	KeyOriginator = capitan.NewStringKey("originator_id")
	KeyVersion    = capitan.NewIntKey("originator_version")
	KeySize       = capitan.NewIntKey("size")
	KeyError      = capitan.NewErrorKey("error")
)

func storedFields(stored StoredEvent) []capitan.Field {
	return []capitan.Field{
		KeyTopic.Field(stored.Topic),
		KeyOriginator.Field(stored.OriginatorID.String()),
		KeyVersion.Field(stored.OriginatorVersion),
		KeySize.Field(len(stored.State)),
	}
}

// emitStored emits an event when ToStored finishes.
func emitStored(ctx context.Context, stored StoredEvent, err error) {
	fields := storedFields(stored)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalStored, fields...)
	} else {
		capitan.Emit(ctx, SignalStored, fields...)
	}
}

// emitLoaded emits an event when FromStored finishes.
func emitLoaded(ctx context.Context, stored StoredEvent, err error) {
	fields := storedFields(stored)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalLoaded, fields...)
	} else {
		capitan.Emit(ctx, SignalLoaded, fields...)
	}
}
