package sink

import (
	"fmt"

	"github.com/larsks/airdancer/internal/mqtt"
)

// Factory builds a CommandSink from its configuration settings, passed as an
// opaque map so each backend's factory decides its own keys.
type Factory func(settings map[string]string) (CommandSink, error)

// Registry maps a sink backend name (as named in runtime settings) to the
// Factory that builds it, so the CLI can pick shell, mqtt, or a future
// backend without a type switch at the call site.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a Registry pre-populated with the built-in "shell" and
// "mqtt" backends.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("shell", func(settings map[string]string) (CommandSink, error) {
		return NewShellSink(settings["shell"]), nil
	})
	r.Register("mqtt", func(settings map[string]string) (CommandSink, error) {
		client, err := mqtt.NewClient(mqtt.Config{
			ServerURL: settings["broker"],
			ClientID:  "pedalmacro",
		})
		if err != nil {
			return nil, fmt.Errorf("connect to mqtt broker: %w", err)
		}
		return NewMQTTSink(client, settings["topic"]), nil
	})
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Build constructs the named sink from settings.
func (r *Registry) Build(name string, settings map[string]string) (CommandSink, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown command sink backend: %s", name)
	}
	return factory(settings)
}

// Names lists the registered backend names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
