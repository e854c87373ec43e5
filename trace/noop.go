// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"go.opentelemetry.io/otel/trace/noop"

	oteltrace "go.opentelemetry.io/otel/trace"
)

var _ Tracer = (*noOpTracer)(nil)

// noOpTracer records nothing.
type noOpTracer struct {
	oteltrace.Tracer
}

// Noop returns a [Tracer] that does nothing.
func Noop(name string) Tracer {
	return &noOpTracer{
		Tracer: noop.NewTracerProvider().Tracer(name),
	}
}

func (*noOpTracer) Close() error {
	return nil
}
