package spacetraders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

const (
	fixtureStatus  = `{"status":"spacetraders is currently online and available to play"}`
	fixtureAccount = `{"user":{"username":"trader","credits":0,"shipCount":0,"structureCount":0,"joinedAt":"2021-05-01T12:00:00.000Z"}}`
	fixtureGoods   = `{"goods":[{"symbol":"FUEL","name":"Fuel","volumePerUnit":1},{"symbol":"METALS","name":"Metals","volumePerUnit":1}]}`
	fixtureShips   = `{"ships":[
		{"type":"JW-MK-I","class":"MK-I","maxCargo":50,"loadingSpeed":25,"speed":1,"manufacturer":"Jackshaw","plating":5,"weapons":5},
		{"type":"GR-MK-II","class":"MK-II","maxCargo":300,"loadingSpeed":500,"speed":1,"manufacturer":"Gravager","plating":10,"weapons":5}
	]}`
	fixtureStructures = `{"structures":[{"type":"MINE","name":"Mine","price":100000,"allowedLocationTypes":["ASTEROID"],"allowedPlanetTraits":["METAL_ORES"],"consumes":["MACHINERY"],"produces":["METALS"]}]}`
	fixtureLoanTypes  = `{"loans":[{"type":"STARTUP","amount":200000,"rate":40,"termInDays":2,"collateralRequired":false}]}`

	fixtureOELocations = `{"locations":[
		{"symbol":"OE-PM-TR","type":"MOON","name":"Tritus","x":-19,"y":-17,"allowsConstruction":false,"traits":["METAL_ORES"],"dockedShips":3},
		{"symbol":"OE-PM","type":"PLANET","name":"Prime","x":-20,"y":-5,"allowsConstruction":false}
	]}`
	fixtureOEInfo = `{"system":{"symbol":"OE","name":"Omicron Eridani"}}`

	fixtureListings = `{"shipListings":[
		{"type":"JW-MK-I","class":"MK-I","maxCargo":50,"loadingSpeed":25,"speed":1,"manufacturer":"Jackshaw","plating":5,"weapons":5,"restrictedGoods":["MACHINERY"],
		 "purchaseLocations":[{"system":"OE","location":"OE-PM-TR","price":21125},{"system":"XV","location":"XV-BN","price":20550}]},
		{"type":"GR-MK-II","class":"MK-II","maxCargo":300,"loadingSpeed":500,"speed":1,"manufacturer":"Gravager","plating":10,"weapons":5,
		 "purchaseLocations":[{"system":"OE","location":"OE-PM","price":42120}]}
	]}`
)

type recordedCall struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	ContentLength int64
	At            time.Time
}

// fakeAPI is an in-process SpaceTraders upstream keyed by "METHOD /path"
type fakeAPI struct {
	server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []recordedCall
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{routes: make(map[string]http.HandlerFunc)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		ContentLength: r.ContentLength,
		At:            time.Now(),
	})
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, `{"error":{"message":"Route not found","code":404}}`)
		return
	}
	h(w, r)
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	f.routes[method+" "+path] = h
	f.mu.Unlock()
}

func (f *fakeAPI) respond(method, path string, status int, body string) {
	f.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (f *fakeAPI) callsTo(method, path string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) allCalls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

// seedBootstrap registers every route Start needs for the given systems
func (f *fakeAPI) seedBootstrap(systems ...string) {
	f.respond(http.MethodGet, pathStatus, http.StatusOK, fixtureStatus)
	f.respond(http.MethodGet, pathAccount, http.StatusOK, fixtureAccount)
	f.respond(http.MethodGet, pathGoods, http.StatusOK, fixtureGoods)
	f.respond(http.MethodGet, pathShipTypes, http.StatusOK, fixtureShips)
	f.respond(http.MethodGet, pathStructureTypes, http.StatusOK, fixtureStructures)
	f.respond(http.MethodGet, pathLoanTypes, http.StatusOK, fixtureLoanTypes)

	for _, sys := range systems {
		if sys == "OE" {
			f.respond(http.MethodGet, "/systems/OE", http.StatusOK, fixtureOEInfo)
			f.respond(http.MethodGet, "/systems/OE/locations", http.StatusOK, fixtureOELocations)
			continue
		}
		f.respond(http.MethodGet, "/systems/"+sys, http.StatusOK,
			fmt.Sprintf(`{"system":{"symbol":%q,"name":"System %s"}}`, sys, sys))
		f.respond(http.MethodGet, "/systems/"+sys+"/locations", http.StatusOK,
			fmt.Sprintf(`{"locations":[{"symbol":"%s-PM","type":"PLANET","name":"Planet %s","x":1,"y":2}]}`, sys, sys))
	}
}

func (f *fakeAPI) newClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(f.server.URL), WithMinInterval(0), WithSystems("OE")}, opts...)
	c, err := NewClient(testToken, zerolog.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Stop(context.Background())
	})
	return c
}

// startedClient returns a client that completed bootstrap against f
func (f *fakeAPI) startedClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	f.seedBootstrap("OE")
	c := f.newClient(t, opts...)
	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, StateReady, c.State())
	return c
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func recordEvents(c *Client) *eventLog {
	log := &eventLog{}
	c.Subscribe(func(e Event) {
		log.mu.Lock()
		log.events = append(log.events, e)
		log.mu.Unlock()
	})
	return log
}

func (l *eventLog) named(name EventName) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Event
	for _, e := range l.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, strings.TrimSpace(body))
}
