package matcher

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsks/airdancer/internal/patternengine"
	"github.com/larsks/airdancer/internal/pedalevent"
)

// recordingSink collects dispatched commands in call order for assertions.
type recordingSink struct {
	commands []string
}

func (s *recordingSink) Dispatch(cmd string) error {
	s.commands = append(s.commands, cmd)
	return nil
}

func mustParse(t *testing.T, src string) *patternengine.Config {
	t.Helper()
	cfg, err := patternengine.ParseReader("test", strings.NewReader(src))
	require.NoError(t, err)
	return cfg
}

func ev(button int, action pedalevent.Action, ms int64) pedalevent.ButtonEvent {
	return pedalevent.ButtonEvent{
		Button: pedalevent.Button(button),
		Action: action,
		Time:   time.UnixMilli(ms),
	}
}

func TestMatcher_S1_MaxUseGuardsBareShorthand(t *testing.T) {
	cfg := mustParse(t, "1v,2: A\n1v,3: B\n1: C\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(2, pedalevent.Down, 10))
	m.Handle(ev(2, pedalevent.Up, 20))
	m.Handle(ev(3, pedalevent.Down, 30))
	m.Handle(ev(3, pedalevent.Up, 40))
	m.Handle(ev(1, pedalevent.Up, 50))

	assert.Equal(t, []string{"A", "B"}, sink.commands)
}

func TestMatcher_S2_BareNWhenNotShadowed(t *testing.T) {
	cfg := mustParse(t, "1: C\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(1, pedalevent.Up, 100))

	assert.Equal(t, []string{"C"}, sink.commands)
}

func TestMatcher_S3_ExplicitSequenceFiresDespitePriorUse(t *testing.T) {
	cfg := mustParse(t, "1v,2: A\n1v,1^: D\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(2, pedalevent.Down, 10))
	m.Handle(ev(2, pedalevent.Up, 20))
	m.Handle(ev(1, pedalevent.Up, 30))

	assert.Equal(t, []string{"A", "D"}, sink.commands)
}

func TestMatcher_S4_TimeLimitExcludesSlowSequence(t *testing.T) {
	cfg := mustParse(t, "1v,2 < 0.100: FAST\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(2, pedalevent.Down, 250))

	assert.Empty(t, sink.commands)
}

func TestMatcher_S5_OverlappingTimedRulesAllFire(t *testing.T) {
	cfg := mustParse(t, "1,2,3 < 0.200: VFAST\n1,2,3 < 0.500: MED\n1,2,3 < 1.000: SLOW\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(1, pedalevent.Up, 10))
	m.Handle(ev(2, pedalevent.Down, 20))
	m.Handle(ev(2, pedalevent.Up, 30))
	m.Handle(ev(3, pedalevent.Down, 150))
	m.Handle(ev(3, pedalevent.Up, 160))

	assert.Equal(t, []string{"VFAST", "MED", "SLOW"}, sink.commands)
}

func TestMatcher_S6_CrossDeviceCombination(t *testing.T) {
	cfg := mustParse(t, "1v,5: X\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(5, pedalevent.Down, 50))
	m.Handle(ev(5, pedalevent.Up, 60))
	assert.Equal(t, []string{"X"}, sink.commands)

	m.Handle(ev(1, pedalevent.Up, 70))
	assert.Equal(t, []string{"X"}, sink.commands)
}

func TestMatcher_ReleasePopKeepsHistoryBounded(t *testing.T) {
	cfg := mustParse(t, "1: C\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(1, pedalevent.Up, 10))

	_, hist := m.Snapshot()
	assert.Equal(t, 0, len(hist))
}

func TestMatcher_DeclarationOrderBreaksTies(t *testing.T) {
	cfg := mustParse(t, "1,2^: SPECIFIC\n1v,2^: GENERAL\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(2, pedalevent.Down, 10))
	m.Handle(ev(2, pedalevent.Up, 20))

	assert.Equal(t, []string{"SPECIFIC", "GENERAL"}, sink.commands)
}

func TestMatcher_AnyLastElementFiresOnlyOnRelease(t *testing.T) {
	cfg := mustParse(t, "1v,2: COMBO\n")
	sink := &recordingSink{}
	m := New(cfg.Rules, sink)

	m.Handle(ev(1, pedalevent.Down, 0))
	m.Handle(ev(2, pedalevent.Down, 10))
	assert.Empty(t, sink.commands, "an Any-terminated pattern must not fire on the press half of its last element")

	m.Handle(ev(2, pedalevent.Up, 20))
	assert.Equal(t, []string{"COMBO"}, sink.commands)
}
