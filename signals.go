package transcoder

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for transcoder events.
var (
	SignalRegistered     = capitan.NewSignal("transcoder.registered", "Transcoding registered")
	SignalEncodeComplete = capitan.NewSignal("transcoder.encode.complete", "Encode operation finished")
	SignalDecodeComplete = capitan.NewSignal("transcoder.decode.complete", "Decode operation finished")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyName        = capitan.NewStringKey("name")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeySize        = capitan.NewIntKey("size")
	KeyEnvelopes   = capitan.NewIntKey("envelopes")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitRegistered emits an event when a transcoding is registered.
func emitRegistered(ctx context.Context, name, typeName string) {
	capitan.Emit(ctx, SignalRegistered,
		KeyName.Field(name),
		KeyTypeName.Field(typeName),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, contentType string, size, envelopes int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyEnvelopes.Field(envelopes),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}

// emitDecodeComplete emits an event when decode finishes.
func emitDecodeComplete(ctx context.Context, contentType string, size, envelopes int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyEnvelopes.Field(envelopes),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}
