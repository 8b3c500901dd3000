package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"pokerescrow/internal/codec"
	"pokerescrow/internal/config"
	"pokerescrow/internal/events"
	"pokerescrow/internal/state"
)

func writeTestState(t *testing.T, home string) {
	t.Helper()
	st := state.NewState()
	st.Height = 4
	require.NoError(t, st.Credit("alice", codec.MustParseEther("12.5")))
	require.NoError(t, st.Credit("bob", codec.MustParseEther("0.25")))
	st.AccountKeys["alice"] = make([]byte, 32)
	st.NonceMax["alice"] = 3

	s := state.NewSession(1, "alice", codec.MustParseEther("1.0"), 2)
	s.Players = append(s.Players, state.Player{
		Address:      "bob",
		Contribution: codec.MustParseEther("1.0"),
		RoundBet:     sdkmath.ZeroUint(),
	})
	s.Pot = codec.MustParseEther("1.0")
	s.Phase = state.PhasePreFlop
	st.Sessions[1] = s
	st.NextSessionID = 2
	require.NoError(t, st.Save(filepath.Join(home, "app")))
}

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestSessionsCommand(t *testing.T) {
	home := t.TempDir()
	writeTestState(t, home)

	out := runRoot(t, "sessions", "--home", home)
	require.Contains(t, out, "Dealer")
	require.Contains(t, out, "alice")
	require.Contains(t, out, "preflop")
	require.Contains(t, out, "1.0")
}

func TestAccountsCommand(t *testing.T) {
	home := t.TempDir()
	writeTestState(t, home)

	out := runRoot(t, "accounts", "--home", home)
	lines := strings.Split(out, "\n")
	var alice, bob string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "alice"):
			alice = l
		case strings.Contains(l, "bob"):
			bob = l
		}
	}
	require.Contains(t, alice, "12.5")
	require.Contains(t, alice, "yes")
	require.Contains(t, bob, "0.25")
	require.Contains(t, bob, "no")
}

func TestSessionsCommand_EmptyHome(t *testing.T) {
	out := runRoot(t, "sessions", "--home", t.TempDir())
	require.Contains(t, out, "Buy-in")
	require.NotContains(t, out, "alice")
}

func TestBuildSinks_PublishesToRedisAndCountsMetrics(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	ctx := context.Background()
	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = sub.Close() })
	ps := sub.Subscribe(ctx, "sessions")
	t.Cleanup(func() { _ = ps.Close() })
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	cfg := config.Config{Events: config.EventsConfig{
		Buffer: 8,
		Redis:  config.RedisConfig{Addr: mr.Addr(), Channel: "sessions"},
	}}
	reg := prometheus.NewRegistry()
	sinks, err := buildSinks(cfg, log.NewNopLogger(), reg)
	require.NoError(t, err)

	require.NoError(t, sinks.dispatcher.Emit(ctx, events.SessionEnded(3, "bob", codec.MustParseEther("2.0"))))

	select {
	case msg := <-ps.Channel():
		var env events.RedisEnvelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		require.Equal(t, events.KindSessionEnded, env.Event.Kind)
		require.Equal(t, "bob", env.Event.Winner)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for redis publish")
	}
	sinks.Close()

	srv := httptest.NewServer(newMetricsServer("", reg).Handler)
	t.Cleanup(srv.Close)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body.String(), `pokerescrow_session_events_total{kind="SessionEnded"} 1`)
	require.Contains(t, body.String(), "pokerescrow_pot_paid_ether_total 2")
}
