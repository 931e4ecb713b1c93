// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledTracer(t *testing.T) {
	require := require.New(t)

	tracer, err := New(&Config{Enabled: false, AppName: "creditvm"})
	require.NoError(err)

	ctx, span := tracer.Start(context.Background(), "Runtime.Execute")
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
		AppName:         "creditvm",
		Agent:           "test",
	})
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "Runtime.Execute")
	require.True(span.IsRecording())
	span.End()
}
