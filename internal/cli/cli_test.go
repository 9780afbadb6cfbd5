package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/ticketflow/internal/config"
	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/adapters/file"
	"github.com/aretw0/ticketflow/pkg/adapters/memory"
	"github.com/aretw0/ticketflow/pkg/adapters/redis"
	"github.com/aretw0/ticketflow/pkg/adapters/sqlite"
	"github.com/aretw0/ticketflow/pkg/booking"
	"github.com/aretw0/ticketflow/pkg/catalog"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	cfg.Store.Dir = t.TempDir()
	return cfg
}

func newTestRuntime(t *testing.T, cfg *config.Config) *Runtime {
	t.Helper()
	rt, err := NewRuntime(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestOpenStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		backend    string
		lock       bool
		wantType   any
		wantLocker bool
	}{
		{config.BackendMemory, false, &memory.Store{}, false},
		{config.BackendFile, false, &file.Store{}, false},
		{config.BackendSQLite, false, &sqlite.Store{}, false},
		{config.BackendRedis, false, &redis.Store{}, false},
		{config.BackendRedis, true, &redis.Store{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Store.Backend = tt.backend
			cfg.Redis.Addr = mr.Addr()
			cfg.Redis.Lock = tt.lock

			store, locker, closeStore, err := OpenStore(cfg)
			require.NoError(t, err)
			defer closeStore()

			assert.IsType(t, tt.wantType, store)
			assert.Equal(t, tt.wantLocker, locker != nil)
		})
	}
}

func TestOpenStore_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "floppy"
	_, _, _, err := OpenStore(cfg)
	assert.ErrorContains(t, err, "unknown store backend")

	cfg.Store.Backend = config.BackendRedis
	cfg.Redis.Addr = "127.0.0.1:1"
	_, _, _, err = OpenStore(cfg)
	assert.ErrorContains(t, err, "failed to reach redis")
}

func TestNewRuntime_PersistsAndCounts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = config.BackendFile
	ctx := context.Background()

	rt := newTestRuntime(t, cfg)
	_, err := rt.Engine.Step(ctx, "s1", "auth")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(rt.Metrics.Transitions.WithLabelValues("start", "logged_in")))

	// A second runtime on the same directory resumes the session.
	again := newTestRuntime(t, cfg)
	snap, err := again.Engine.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, booking.LoggedIn, snap.Current)
}

func TestNewRuntime_Catalog(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "trails.yaml")

	require.NoError(t, os.WriteFile(path, []byte("- seq: auth\n  expected: reject\n"), 0o644))
	cfg.Catalog.Path = path
	rt := newTestRuntime(t, cfg)
	assert.Equal(t, 1, rt.Engine.Catalog().Len())

	require.NoError(t, os.WriteFile(path, []byte("- seq: auth\n  expected: accept\n"), 0o644))
	_, err := NewRuntime(cfg, logging.NewNop())
	var mismatch *catalog.MismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestPlay_Text(t *testing.T) {
	rt := newTestRuntime(t, testConfig(t))
	var out bytes.Buffer

	err := Play(context.Background(), rt, PlayOptions{
		SessionID: "p1",
		In:        strings.NewReader("auth select\n:trace\n:run auth select avail_ok choose details pay_ok\n:bogus\n:q\nignored\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, ">>> ticketflow")
	assert.Contains(t, text, "session 'p1' at 'start'")
	assert.Contains(t, text, "auth: start -> logged_in")
	assert.Contains(t, text, "select: logged_in -> journey_sel")
	assert.Contains(t, text, "start -> logged_in -> journey_sel")
	assert.Contains(t, text, "ticket_issued (accept)")
	assert.Contains(t, text, `Error: unknown command "bogus"`)
	assert.NotContains(t, text, "ignored")
}

func TestPlay_FreshJSON(t *testing.T) {
	rt := newTestRuntime(t, testConfig(t))
	ctx := context.Background()
	_, err := rt.Engine.Step(ctx, "p2", "auth")
	require.NoError(t, err)

	var out bytes.Buffer
	err = Play(ctx, rt, PlayOptions{
		SessionID: "p2",
		JSON:      true,
		Fresh:     true,
		In:        strings.NewReader("\"auth\"\n"),
		Out:       &out,
	})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), ">>>")
	assert.Contains(t, out.String(), `"kind":"step"`)
	assert.Contains(t, out.String(), `"trace":["start","logged_in"]`)
}

func TestRunSequence(t *testing.T) {
	rt := newTestRuntime(t, testConfig(t))
	ctx := context.Background()
	var out bytes.Buffer

	err := RunSequence(ctx, &out, rt.Engine, "cli", []string{"auth", "select", "avail_ok", "choose", "details", "pay_ok"}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "final: ticket_issued (accept)")

	out.Reset()
	err = RunSequence(ctx, &out, rt.Engine, "cli", []string{"auth cancel"}, true)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, out.String(), `"current": "error"`)
}

func TestVerifyTrails(t *testing.T) {
	table := booking.MustTable()
	var out bytes.Buffer

	require.NoError(t, VerifyTrails(&out, table, catalog.New(booking.Trails()...)))
	assert.Contains(t, out.String(), "0 failed")

	out.Reset()
	bad := catalog.New(
		domain.Trail{Seq: "auth", Expected: domain.VerdictReject},
		domain.Trail{Seq: "auth", Expected: domain.VerdictAccept},
	)
	err := VerifyTrails(&out, table, bad)
	var mismatch *catalog.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, out.String(), "ok    auth: reject")
	assert.Contains(t, out.String(), "FAIL  auth: expected accept, got reject at logged_in")
	assert.Contains(t, out.String(), "2 trails, 1 failed")
}

func TestVerifyCatalog_ReportsEachMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trails.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`trails:
  - seq: auth select avail_no
    expected: reject
  - seq: auth select avail_no
    expected: accept
`), 0o644))

	var out bytes.Buffer
	err := VerifyCatalog(&out, path)
	var mismatch *catalog.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, out.String(), "ok    auth select avail_no: reject")
	assert.Contains(t, out.String(), "FAIL  auth select avail_no: expected accept, got reject at no_availability")
	assert.Contains(t, out.String(), "2 trails, 1 failed")

	out.Reset()
	require.NoError(t, VerifyCatalog(&out, ""))
	assert.Contains(t, out.String(), "14 trails, 0 failed")
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Validate(&out, ""))
	assert.Contains(t, out.String(), "10 states, 11 symbols")
	assert.Contains(t, out.String(), "consistent")

	assert.Error(t, Validate(&out, filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestPrintTrails(t *testing.T) {
	var out bytes.Buffer
	trails := []domain.Trail{{Seq: "auth select", Expected: domain.VerdictReject}}

	require.NoError(t, PrintTrails(&out, trails, false))
	assert.Equal(t, " 0  reject  auth select\n", out.String())

	out.Reset()
	require.NoError(t, PrintTrails(&out, trails, true))
	assert.Contains(t, out.String(), `"seq": "auth select"`)
}

func TestLegendMarkdown(t *testing.T) {
	md := LegendMarkdown(domain.Description{
		Alphabet: []domain.Symbol{"auth", "zap"},
		Legend:   map[domain.Symbol]string{"auth": "login/auth"},
	})
	assert.Contains(t, md, "| `auth` | login/auth |")
	assert.Contains(t, md, "| `zap` | zap |")
}

func TestSessions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = config.BackendSQLite
	rt := newTestRuntime(t, cfg)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, ListSessions(ctx, &out, rt.Engine))
	assert.Contains(t, out.String(), "No active sessions found.")

	for _, id := range []string{"a", "b", "c"} {
		_, err := rt.Engine.Step(ctx, id, "auth")
		require.NoError(t, err)
	}

	out.Reset()
	require.NoError(t, ListSessions(ctx, &out, rt.Engine))
	assert.Equal(t, "Active Sessions:\n- a\n- b\n- c\n", out.String())

	out.Reset()
	require.NoError(t, InspectSession(ctx, &out, rt.Engine, "a"))
	assert.Contains(t, out.String(), `"current": "logged_in"`)

	err := InspectSession(ctx, &out, rt.Engine, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, &out, rt.Engine, []string{"a"}, false))
	assert.Equal(t, "Removed session 'a'\n", out.String())

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, &out, rt.Engine, nil, true))
	assert.Equal(t, "Removed session 'b'\nRemoved session 'c'\n", out.String())

	ids, err := rt.Engine.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
