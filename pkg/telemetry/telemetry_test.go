package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
)

func Test_NewMeterProvider_ExportsToRegistry(t *testing.T) {
	// given
	reg := prometheus.NewRegistry()
	mp, err := NewMeterProvider("catalog-test", reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	counter, err := mp.Meter("test").Int64Counter("widgets_made", metric.WithDescription("Widgets made."))
	require.NoError(t, err)

	// when
	counter.Add(context.Background(), 3)
	families, err := reg.Gather()

	// then
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "widgets_made_total")
}
