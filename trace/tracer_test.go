// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopTracer(t *testing.T) {
	require := require.New(t)
	tracer, err := New(&Config{AppName: "counter"})
	require.NoError(err)

	ctx, span := tracer.Start(context.Background(), "op")
	require.NotNil(ctx)
	require.False(span.IsRecording())
	span.End()
	require.NoError(tracer.Close())
}

func TestEnabledTracer(t *testing.T) {
	require := require.New(t)
	tracer, err := New(&Config{
		Enabled:         true,
		TraceSampleRate: 1,
		AppName:         "counter",
		Agent:           "counter-cli",
		Version:         "test",
	})
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "op")
	require.True(span.IsRecording())
	span.End()
	// The collector is not running; shutdown still returns once the export
	// attempt gives up.
	_ = tracer.Close()
}
