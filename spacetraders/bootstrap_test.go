package spacetraders

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Start(t *testing.T) {
	f := newFakeAPI(t)
	f.seedBootstrap("OE", "XV")
	c := f.newClient(t, WithSystems("OE", "XV"))
	events := recordEvents(c)

	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, StateReady, c.State())
	assert.Len(t, events.named(EventReady), 1)
	assert.Empty(t, events.named(EventError))

	user, ok := c.User()
	require.True(t, ok)
	assert.Equal(t, "trader", user.Username)

	systems := c.Systems()
	require.Len(t, systems, 2)
	assert.Equal(t, "OE", systems[0].Symbol)
	assert.Equal(t, "Omicron Eridani", systems[0].Name)
	assert.Len(t, systems[0].Locations, 2)
	assert.Equal(t, "XV", systems[1].Symbol)
	assert.Len(t, c.Goods(), 2)
	assert.Len(t, c.ShipTypes(), 2)
	assert.Len(t, c.StructureTypes(), 1)
	assert.Len(t, c.LoanTypes(), 1)

	calls := f.allCalls()
	assert.Equal(t, pathStatus, calls[0].Path, "status is checked first")
	assert.Equal(t, pathAccount, calls[1].Path, "account is fetched second")
	assert.Len(t, calls, 2+2*2+4)
}

func TestClient_StartTwice(t *testing.T) {
	f := newFakeAPI(t)
	c := f.startedClient(t)
	before := len(f.allCalls())

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, StateReady, c.State())
	assert.Len(t, f.allCalls(), before)
}

func TestClient_StartStatusDown(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "server error",
			status:  http.StatusServiceUnavailable,
			body:    "upstream connect error",
			wantMsg: "unexpected status 503",
		},
		{
			name:    "maintenance notice",
			status:  http.StatusOK,
			body:    `{"status":"SpaceTraders is currently down for maintenance"}`,
			wantMsg: "down for maintenance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI(t)
			f.seedBootstrap("OE")
			f.respond(http.MethodGet, pathStatus, tt.status, tt.body)
			c := f.newClient(t)
			events := recordEvents(c)

			err := c.Start(context.Background())
			require.Error(t, err)
			assert.Equal(t, KindUpstreamUnavailable, KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)

			assert.Equal(t, StateDown, c.State())
			assert.Len(t, f.allCalls(), 1, "nothing is fetched after a failed status check")
			assert.Len(t, events.named(EventError), 1)
			assert.Empty(t, events.named(EventReady))

			_, err = c.GetAccount(context.Background())
			assert.ErrorIs(t, err, ErrConnectionTerminated)
		})
	}
}

func TestClient_StartAccountRejected(t *testing.T) {
	f := newFakeAPI(t)
	f.seedBootstrap("OE")
	f.respond(http.MethodGet, pathAccount, http.StatusUnauthorized, `{"error":{"message":"Token was invalid or missing from the request.","code":40101}}`)
	c := f.newClient(t)

	err := c.Start(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, "40101", apiErr.Code)
	assert.Equal(t, StateStopped, c.State())
}

func TestClient_StartIncompleteReference(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		missing string
	}{
		{"no goods", pathGoods, `{"goods":[]}`, "goods"},
		{"no ship types", pathShipTypes, `{"ships":[]}`, "ship types"},
		{"no structure types", pathStructureTypes, `{"structures":[]}`, "structure types"},
		{"no loan types", pathLoanTypes, `{}`, "loan types"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI(t)
			f.seedBootstrap("OE")
			f.respond(http.MethodGet, tt.path, http.StatusOK, tt.body)
			c := f.newClient(t)
			events := recordEvents(c)

			var states []State
			c.Subscribe(func(e Event) {
				if e.Name == EventError && e.Path == "" {
					states = append(states, c.State())
				}
			})

			err := c.Start(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBootstrapIncomplete)
			assert.Contains(t, err.Error(), tt.missing)

			assert.Equal(t, StateStopped, c.State())
			assert.Len(t, events.named(EventError), 1)
			assert.Empty(t, events.named(EventReady))
			assert.Len(t, events.named(EventStopped), 1)
			assert.Equal(t, []State{StateFailedReady}, states)

			_, err = c.GetUserShips(context.Background())
			assert.ErrorIs(t, err, ErrConnectionTerminated)
		})
	}
}

func TestClient_StartReferenceFetchFails(t *testing.T) {
	f := newFakeAPI(t)
	f.seedBootstrap("OE")
	f.respond(http.MethodGet, "/systems/OE/locations", http.StatusInternalServerError, "")
	c := f.newClient(t)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindUpstreamUnavailable, KindOf(err))
	assert.Equal(t, StateStopped, c.State())
	assert.Empty(t, c.Systems(), "a failed warm load caches nothing")
}

func TestClient_StartReferenceFetchFailsOnce(t *testing.T) {
	f := newFakeAPI(t)
	f.seedBootstrap("OE", "XV", "NA7")
	f.respond(http.MethodGet, "/systems/OE/locations", http.StatusInternalServerError, "")
	c := f.newClient(t, WithSystems("OE", "XV", "NA7"))
	events := recordEvents(c)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindUpstreamUnavailable, KindOf(err))

	errs := events.named(EventError)
	require.Len(t, errs, 1, "abandoned sibling fetches are not reported")
	assert.Equal(t, "/systems/OE/locations", errs[0].Path)
	assert.Equal(t, KindUpstreamUnavailable, KindOf(errs[0].Err))
	assert.Len(t, events.named(EventStopped), 1)
}

func TestClient_StopDuringStart(t *testing.T) {
	f := newFakeAPI(t)
	f.seedBootstrap("OE")

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.handle(http.MethodGet, pathGoods, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		writeJSON(w, http.StatusOK, fixtureGoods)
	})
	c := f.newClient(t)
	events := recordEvents(c)

	go func() {
		<-entered
		go func() { _ = c.Stop(context.Background()) }()
		assert.Eventually(t, func() bool { return c.State() == StateStopped }, time.Second, time.Millisecond)
		close(release)
	}()

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionTerminated)

	assert.Equal(t, StateStopped, c.State())
	assert.Empty(t, events.named(EventReady))
	assert.Eventually(t, func() bool { return len(events.named(EventStopped)) == 1 }, time.Second, time.Millisecond)
	assert.Len(t, events.named(EventStopped), 1)
	for _, e := range events.named(EventError) {
		assert.Equal(t, KindConnectionTerminated, KindOf(e.Err), e.Path)
	}

	_, err = c.GetUserShips(context.Background())
	assert.ErrorIs(t, err, ErrConnectionTerminated)
}

func TestClient_StartPacing(t *testing.T) {
	const interval = 20 * time.Millisecond

	f := newFakeAPI(t)
	f.seedBootstrap("OE", "XV", "NA7")
	c := f.newClient(t, WithSystems("OE", "XV", "NA7"), WithMinInterval(interval))

	require.NoError(t, c.Start(context.Background()))

	var reference []time.Time
	for _, call := range f.allCalls() {
		if call.Path == pathStatus || call.Path == pathAccount {
			continue
		}
		reference = append(reference, call.At)
	}
	require.Len(t, reference, 10)

	slices.SortFunc(reference, func(a, b time.Time) int { return a.Compare(b) })
	span := reference[len(reference)-1].Sub(reference[0])
	assert.GreaterOrEqual(t, span, 9*interval-5*time.Millisecond)

	for i := 1; i < len(reference); i++ {
		assert.GreaterOrEqual(t, reference[i].Sub(reference[i-1]), interval-5*time.Millisecond)
	}
}

func TestClient_StartCancelled(t *testing.T) {
	f := newFakeAPI(t)
	f.seedBootstrap("OE")
	f.handle(http.MethodGet, pathGoods, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c := f.newClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		assert.Eventually(t, func() bool {
			return len(f.callsTo(http.MethodGet, pathGoods)) == 1
		}, time.Second, time.Millisecond)
		cancel()
	}()

	err := c.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionTerminated)
	assert.True(t, strings.Contains(err.Error(), "cancelled"))
	assert.Equal(t, StateStopped, c.State())
}

func TestSession_CheckReady(t *testing.T) {
	full := func() *session {
		s := newSession("Bearer x", DefaultBaseURL, http.DefaultClient)
		s.setUser(User{Username: "trader"})
		s.setReference(reference{
			systems:        []System{{Symbol: "OE"}},
			goods:          []Good{{Symbol: "FUEL"}},
			shipTypes:      []ShipType{{Type: "JW-MK-I"}},
			structureTypes: []StructureType{{Type: "MINE"}},
			loanTypes:      []LoanType{{Type: "STARTUP"}},
		})
		return s
	}

	require.NoError(t, full().checkReady())

	tests := []struct {
		name    string
		mutate  func(s *session)
		missing string
	}{
		{"no systems", func(s *session) { s.ref.systems = nil }, "systems"},
		{"no goods", func(s *session) { s.ref.goods = []Good{} }, "goods"},
		{"no ship types", func(s *session) { s.ref.shipTypes = nil }, "ship types"},
		{"no structure types", func(s *session) { s.ref.structureTypes = nil }, "structure types"},
		{"no loan types", func(s *session) { s.ref.loanTypes = nil }, "loan types"},
		{"no account", func(s *session) { s.user = nil }, "account"},
		{"no token", func(s *session) { s.token = "" }, "token"},
		{"no transport", func(s *session) { s.httpClient = nil }, "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := full()
			tt.mutate(s)
			err := s.checkReady()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBootstrapIncomplete)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestSession_CopiesCache(t *testing.T) {
	docked := 1
	s := newSession("Bearer x", DefaultBaseURL, http.DefaultClient)
	s.setReference(reference{
		systems: []System{{Symbol: "OE", Locations: []Location{{Symbol: "OE-PM", Traits: []string{"ARABLE_LAND"}, DockedShips: &docked}}}},
		goods:   []Good{{Symbol: "FUEL"}},
	})

	systems := s.Systems()
	systems[0].Locations[0].Traits[0] = "changed"
	*systems[0].Locations[0].DockedShips = 99
	goods := s.Goods()
	goods[0].Symbol = "changed"

	assert.Equal(t, "ARABLE_LAND", s.Systems()[0].Locations[0].Traits[0])
	assert.Equal(t, 1, *s.Systems()[0].Locations[0].DockedShips)
	assert.Equal(t, "FUEL", s.Goods()[0].Symbol)
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateUninitialized, "uninitialized"},
		{StateAuthPending, "auth-pending"},
		{StateStatusChecking, "status-checking"},
		{StateDown, "down"},
		{StateAccountFetching, "account-fetching"},
		{StateBootstrapping, "bootstrapping"},
		{StateReady, "ready"},
		{StateFailedReady, "failed-ready"},
		{StateStopped, "stopped"},
		{State(42), "state(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
