package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/pkg/booking"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *ticketflow.Engine {
	t.Helper()
	eng, err := ticketflow.New()
	require.NoError(t, err)
	return eng
}

func TestRunner_TextSession(t *testing.T) {
	eng := newEngine(t)
	in := strings.NewReader("auth select\n:trace\n:run auth select avail_no\n:reset\n:quit\nauth\n")
	var out bytes.Buffer

	r := runner.New(eng,
		runner.WithSessionID("cli"),
		runner.WithInputHandler(runner.NewTextHandler(in, &out, runner.WithTextHandlerPrompt(""))),
	)
	require.NoError(t, r.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"auth: start -> logged_in",
		"select: logged_in -> journey_sel",
		"start -> logged_in -> journey_sel",
		"no_availability (reject)",
		"trace: start -> logged_in -> journey_sel -> no_availability",
		"start (reject)",
		"trace: start",
	}, lines)

	// The step after :quit was never executed.
	snap, err := eng.Snapshot(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, booking.Start, snap.Current)
}

func TestRunner_AcceptedStepIsMarked(t *testing.T) {
	eng := newEngine(t)
	in := strings.NewReader(":run auth select avail_ok choose details\npay_ok\n")
	var out bytes.Buffer

	r := runner.New(eng, runner.WithInputHandler(runner.NewTextHandler(in, &out, runner.WithTextHandlerPrompt(""))))
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "pay_ok: passenger_info -> ticket_issued (accepted)")
}

func TestRunner_UnknownCommandIsReported(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer

	r := runner.New(eng, runner.WithInputHandler(
		runner.NewTextHandler(strings.NewReader(":fly\n"), &out, runner.WithTextHandlerPrompt(""))))
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), `Error: unknown command "fly"`)
}

func TestRunner_HelpUsesRenderer(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer
	renderer := func(s string) (string, error) { return strings.ToUpper(s), nil }

	h := runner.NewTextHandler(strings.NewReader(":help\n"), &out,
		runner.WithTextHandlerPrompt(""),
		runner.WithTextHandlerRenderer(renderer))
	require.NoError(t, runner.New(eng, runner.WithInputHandler(h)).Run(context.Background()))

	assert.Contains(t, out.String(), "- `AUTH`: LOGIN/AUTH")
}

func TestRunner_Highlighter(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer
	hl := func(s domain.State, accepted bool) string { return "[" + string(s) + "]" }

	h := runner.NewTextHandler(strings.NewReader("auth\n"), &out,
		runner.WithTextHandlerPrompt(""),
		runner.WithTextHandlerHighlighter(hl))
	require.NoError(t, runner.New(eng, runner.WithInputHandler(h)).Run(context.Background()))

	assert.Equal(t, "auth: [start] -> [logged_in]\n", out.String())
}

func TestRunner_JSONHandler(t *testing.T) {
	eng := newEngine(t)
	in := strings.NewReader("\"auth\"\n:random\n")
	var out bytes.Buffer

	r := runner.New(eng, runner.WithInputHandler(runner.NewJSONHandler(in, &out)))
	require.NoError(t, r.Run(context.Background()))

	dec := json.NewDecoder(&out)
	var msgs []runner.Message
	for dec.More() {
		var m runner.Message
		require.NoError(t, dec.Decode(&m))
		msgs = append(msgs, m)
	}

	require.Len(t, msgs, 3)
	assert.Equal(t, runner.KindStep, msgs[0].Kind)
	assert.Equal(t, booking.LoggedIn, msgs[0].Step.Current)

	assert.Equal(t, runner.KindTrail, msgs[1].Kind)
	require.NotNil(t, msgs[1].Trail)

	assert.Equal(t, runner.KindRun, msgs[2].Kind)
	assert.Equal(t, msgs[1].Trail.Expected, domain.VerdictOf(msgs[2].Run.Accepted), "catalog trails are consistent")
}

func TestRunner_StopsOnCancel(t *testing.T) {
	eng := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.New(eng, runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("auth\n"), &bytes.Buffer{})))
	assert.NoError(t, r.Run(ctx))
}

func TestFormatTrace(t *testing.T) {
	assert.Equal(t, "start", runner.FormatTrace([]domain.State{"start"}))
	assert.Equal(t, "", runner.FormatTrace(nil))
}

func TestRunner_ControlCharactersFailClosed(t *testing.T) {
	eng := newEngine(t)
	in := strings.NewReader("auth\x07\n")
	var out bytes.Buffer

	r := runner.New(eng, runner.WithInputHandler(runner.NewTextHandler(in, &out, runner.WithTextHandlerPrompt(""))))
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, "auth: start -> error\n", out.String())
}
