// Package statsd wraps the few statsd calls the scheduler makes.
// Until Init is called every metric goes to a no-op client.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

// Client returns the active client.
func Client() ddstatsd.ClientInterface {
	return client
}

// EmitSystemTiming records how long one system body ran.
func EmitSystemTiming(start time.Time, system string) {
	emit("system", time.Since(start), []string{"system:" + system})
}

// EmitTickTiming records how long a whole tick ran, command flush included.
func EmitTickTiming(start time.Time) {
	emit("tick", time.Since(start), nil)
}

func emit(name string, duration time.Duration, tags []string) {
	if err := Client().Timing(name, duration, tags, 1); err != nil {
		log.Logger.Warn().Err(err).Str("metric", name).Msg("failed to emit timing")
	}
}

// Init replaces the no-op client with one sending to address.
// It must be called before the first tick.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("tickecs."),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrap(err, "failed to create statsd client")
	}
	client = newClient
	return nil
}

// Close flushes and closes the active client, restoring the no-op client.
func Close() error {
	current := client
	client = &ddstatsd.NoOpClient{}
	return current.Close()
}
