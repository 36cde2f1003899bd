package statsd

import (
	"testing"
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClientIsNoOp(t *testing.T) {
	_, ok := Client().(*ddstatsd.NoOpClient)
	assert.True(t, ok)

	// Emitting against the no-op client must never fail or block.
	EmitSystemTiming(time.Now(), "Move")
	EmitTickTiming(time.Now())
}

func TestInitRejectsEmptyAddress(t *testing.T) {
	err := Init("", nil)
	require.Error(t, err)

	_, ok := Client().(*ddstatsd.NoOpClient)
	assert.True(t, ok, "failed init must keep the no-op client")
}

func TestInitAndClose(t *testing.T) {
	require.NoError(t, Init("127.0.0.1:8125", []string{"env:test"}))
	t.Cleanup(func() { _ = Close() })

	_, ok := Client().(*ddstatsd.NoOpClient)
	assert.False(t, ok)

	EmitSystemTiming(time.Now(), "Move")

	require.NoError(t, Close())
	_, ok = Client().(*ddstatsd.NoOpClient)
	assert.True(t, ok)
}
