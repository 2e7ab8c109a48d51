package patternengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRule_BareRuleRoundTrips(t *testing.T) {
	cfg := mustParseReader(t, "1: LIGHT\n")
	formatted := FormatRule(cfg.Rules[0])
	assert.Equal(t, "1: LIGHT", formatted)

	reparsed, err := ParseReader("test", strings.NewReader(formatted+"\n"))
	require.NoError(t, err)
	assert.True(t, rulesEqual(cfg.Rules[0], reparsed.Rules[0]))
}

func TestFormatRule_ExplicitSequenceWithTimeLimit(t *testing.T) {
	cfg := mustParseReader(t, "1v,2^ < 0.5: FAST\n")
	formatted := FormatRule(cfg.Rules[0])
	assert.Equal(t, "1v,2^ < 0.5: FAST", formatted)
}

func TestFormatPattern_OmitsCommand(t *testing.T) {
	cfg := mustParseReader(t, "1v,2^: COMBO\n")
	assert.Equal(t, "1v,2^", FormatPattern(cfg.Rules[0]))
}

func TestFormatConfig_RoundTripsDevicesAndRules(t *testing.T) {
	src := "dev: /dev/input/event0 A [shared]\n1: LIGHT\n1v,2^: COMBO\n"
	cfg := mustParseReader(t, src)

	formatted := FormatConfig(cfg)
	reparsed, err := ParseReader("test", strings.NewReader(formatted))
	require.NoError(t, err)

	require.Len(t, reparsed.Devices, 1)
	assert.Equal(t, cfg.Devices[0].Path, reparsed.Devices[0].Path)
	assert.Equal(t, cfg.Devices[0].Shared, reparsed.Devices[0].Shared)

	require.Len(t, reparsed.Rules, 2)
	for i := range cfg.Rules {
		assert.True(t, rulesEqual(cfg.Rules[i], reparsed.Rules[i]))
	}
}

func TestFormatEventCodeSpec_PrefersSymbolicNames(t *testing.T) {
	cfg := mustParseReader(t, "dev: /dev/input/event0 A\n")
	assert.Equal(t, "EV_KEY/A", FormatEventCodeSpec(cfg.Devices[0].Codes[0]))
}

func TestFormatEventCodeSpec_IncludesValueWhenSet(t *testing.T) {
	cfg := mustParseReader(t, "dev: /dev/input/event0 EV_REL/X=-1\n")
	assert.Equal(t, "EV_REL/X=-1", FormatEventCodeSpec(cfg.Devices[0].Codes[0]))
}
