package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupOTelSDKDisabled(t *testing.T) {
	t.Parallel()

	shutdown, err := SetupOTelSDK(context.Background(), "postcraft", "")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestGRPCTarget(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"collector:4317":                  "collector:4317",
		"http://collector:4317":           "collector:4317",
		"https://collector:4317/v1/trace": "collector:4317",
	}
	for in, want := range cases {
		got, err := grpcTarget(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := grpcTarget("http://")
	require.Error(t, err)
}
