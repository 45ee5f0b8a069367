package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/presets"
)

func smoothRequest(customers int) StartRequest {
	p, _ := presets.Persona("Eager Shopper")
	return StartRequest{
		Persona: p,
		Funnel: domain.Funnel{ID: "smooth", Name: "Smooth", Steps: []domain.Step{
			{ID: "only", Name: "Only", FrictionLevel: 1},
		}},
		Customers: customers,
		Speed:     1,
	}
}

func presetRequest(customers int) StartRequest {
	p, _ := presets.Persona("Impatient Buyer")
	return StartRequest{Persona: p, Funnel: presets.SimpleProductPage(), Customers: customers, Speed: 1}
}

func readLines(t *testing.T, buf *bytes.Buffer) []Line {
	t.Helper()
	var lines []Line
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var l Line
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l), sc.Text())
		lines = append(lines, l)
	}
	return lines
}

func TestSimulate_RunsToCompletion(t *testing.T) {
	res, err := Simulate(context.Background(), smoothRequest(6), nil)
	require.NoError(t, err)

	assert.False(t, res.Stopped)
	assert.Equal(t, 10, res.Ticks)
	assert.Equal(t, 6, res.Summary.Started)
	assert.Equal(t, 6, res.Summary.Completed)
	assert.NotEmpty(t, res.RunID)
}

func TestSimulate_SameSeedSameSummary(t *testing.T) {
	a, err := Simulate(context.Background(), presetRequest(40), nil, impulse.WithSeed(21))
	require.NoError(t, err)
	b, err := Simulate(context.Background(), presetRequest(40), nil, impulse.WithSeed(21), impulse.WithParallelism(4))
	require.NoError(t, err)

	assert.Equal(t, uint64(21), a.Seed)
	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.Ticks, b.Ticks)
	assert.Equal(t, 40, a.Summary.Completed+a.Summary.Abandoned)
}

func TestSimulate_RejectsInvalidRequest(t *testing.T) {
	_, err := Simulate(context.Background(), smoothRequest(0), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSimulate_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Simulate(ctx, smoothRequest(3), nil)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Zero(t, res.Ticks)
	assert.Zero(t, res.Summary.Started)
}

func TestSimulate_ExtraHooksStillFire(t *testing.T) {
	ticks := 0
	hooks := domain.LifecycleHooks{OnTick: func(context.Context, *domain.TickEvent) { ticks++ }}

	res, err := Simulate(context.Background(), smoothRequest(2), nil, impulse.WithLifecycleHooks(hooks))
	require.NoError(t, err)
	assert.Equal(t, res.Ticks, ticks)
}

func TestRunner_RunWithTicker(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewRunner(WithHandler(NewJSONHandler(buf, true)))
	ticker := impulse.NewManualTicker()
	sim := impulse.New(
		impulse.WithTicker(func(time.Duration) impulse.Ticker { return ticker }),
		impulse.WithLifecycleHooks(r.Hooks()),
	)

	go func() {
		for ticker.Fire() {
		}
	}()

	res, err := r.Run(context.Background(), sim, smoothRequest(3))
	require.NoError(t, err)
	assert.False(t, res.Stopped)
	assert.Equal(t, 3, res.Summary.Completed)

	lines := readLines(t, buf)
	require.Len(t, lines, 12)
	assert.Equal(t, "run_start", lines[0].Type)
	assert.Equal(t, "tick", lines[1].Type)
	assert.Equal(t, 10, lines[10].Population.Tick)
	assert.Equal(t, "result", lines[11].Type)
	assert.Equal(t, 3, lines[11].Result.Summary.Completed)
}

func TestRunner_CancelStopsRun(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewRunner(WithHandler(NewJSONHandler(buf, false)))
	ticker := impulse.NewManualTicker()
	sim := impulse.New(
		impulse.WithTicker(func(time.Duration) impulse.Ticker { return ticker }),
		impulse.WithLifecycleHooks(r.Hooks()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker.Fire()
		ticker.Fire()
		cancel()
	}()

	res, err := r.Run(ctx, sim, smoothRequest(3))
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.False(t, sim.Running())

	lines := readLines(t, buf)
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "system", lines[len(lines)-2].Type)
	assert.Equal(t, "result", lines[len(lines)-1].Type)
}

func TestRunner_FastForward(t *testing.T) {
	r := NewRunner(WithFastForward(true))
	sim := impulse.New(impulse.WithManualTicks(), impulse.WithLifecycleHooks(r.Hooks()))

	res, err := r.Run(context.Background(), sim, smoothRequest(2))
	require.NoError(t, err)
	assert.Equal(t, 10, res.Ticks)
}

func TestTextHandler_Output(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewTextHandler(buf,
		WithTextHandlerProfile(termenv.Ascii),
		WithTextHandlerRenderer(func(s string) (string, error) { return "Rendered: " + s, nil }),
	)

	_, err := Simulate(context.Background(), presetRequest(10), h, impulse.WithSeed(4))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "▶ Simulating 10 customers")
	assert.Contains(t, out, "[tick    1] active 10  completed 0  abandoned 0")
	assert.Contains(t, out, "Rendered: # Simulation Report")
	assert.NotContains(t, out, "\x1b[", "ascii profile must not emit escapes")
}

func TestTextHandler_PrintsOnlyOnChange(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewTextHandler(buf, WithTextHandlerProfile(termenv.Ascii), WithTextHandlerQuiet(true))

	_, err := Simulate(context.Background(), smoothRequest(2), h)
	require.NoError(t, err)

	// Tick 1 is the first line; tick 10 is the only change after it.
	assert.Equal(t, 2, strings.Count(buf.String(), "[tick"))
}

func TestReport(t *testing.T) {
	res, err := Simulate(context.Background(), presetRequest(50), nil, impulse.WithSeed(9))
	require.NoError(t, err)

	md := Report(res)
	assert.Contains(t, md, "# Simulation Report")
	assert.Contains(t, md, "| Landing Page | 50 |")
	assert.Contains(t, md, res.Summary.Insight)
	if res.Summary.Abandoned > 0 {
		assert.Contains(t, md, "## Abandonment reasons")
	}
}
