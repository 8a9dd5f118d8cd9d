package spacetraders

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// State is the lifecycle stage of a Client
type State int

const (
	StateUninitialized State = iota
	StateAuthPending
	StateStatusChecking
	// StateDown is terminal: the status check failed
	StateDown
	StateAccountFetching
	StateBootstrapping
	StateReady
	StateFailedReady
	StateStopped
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAuthPending:
		return "auth-pending"
	case StateStatusChecking:
		return "status-checking"
	case StateDown:
		return "down"
	case StateAccountFetching:
		return "account-fetching"
	case StateBootstrapping:
		return "bootstrapping"
	case StateReady:
		return "ready"
	case StateFailedReady:
		return "failed-ready"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// reference is the reference data gathered during bootstrap
type reference struct {
	systems        []System
	goods          []Good
	shipTypes      []ShipType
	structureTypes []StructureType
	loanTypes      []LoanType
}

// session owns everything one Client knows about its connection.
type session struct {
	mu         sync.RWMutex
	token      string
	baseURL    string
	httpClient *http.Client
	state      State
	user       *User
	ref        reference
}

func newSession(token, baseURL string, httpClient *http.Client) *session {
	return &session{
		token:      token,
		baseURL:    baseURL,
		httpClient: httpClient,
		state:      StateAuthPending,
	}
}

func (s *session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// transition moves from one state to another, reporting false if the
// session was not in the expected state
func (s *session) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// finish moves to a terminal state, reporting false if the session had
// already reached one
func (s *session) finish(final State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped || s.state == StateDown {
		return false
	}
	s.state = final
	return true
}

// admit decides whether a call may go out. Gated calls need a ready session.
func (s *session) admit(gated bool) *Error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.state == StateStopped || s.state == StateDown || s.httpClient == nil:
		return newTerminated("client is stopped", nil)
	case gated && s.state != StateReady:
		return NewInvalidInput(fmt.Sprintf("client is %s", s.state), ErrNotReady)
	}
	return nil
}

func (s *session) transport() (token, baseURL string, httpClient *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.baseURL, s.httpClient
}

// invalidate drops the transport so no further exchange can start
func (s *session) invalidate() {
	s.mu.Lock()
	httpClient := s.httpClient
	s.httpClient = nil
	s.mu.Unlock()

	if httpClient != nil {
		httpClient.CloseIdleConnections()
	}
}

func (s *session) setUser(user User) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
}

func (s *session) setReference(ref reference) {
	s.mu.Lock()
	s.ref = ref
	s.mu.Unlock()
}

// checkReady reports what is still missing before the session can serve
// calls, or nil if nothing is.
func (s *session) checkReady() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.missing()
}

// markReady moves a bootstrapping session to Ready if nothing is missing.
// It fails with ErrConnectionTerminated when the session left Bootstrapping.
func (s *session) markReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBootstrapping {
		return ErrConnectionTerminated
	}
	if err := s.missing(); err != nil {
		s.state = StateFailedReady
		return err
	}
	s.state = StateReady
	return nil
}

// failReady marks bootstrap as failed unless the session already reached a
// terminal state
func (s *session) failReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped || s.state == StateDown {
		return false
	}
	s.state = StateFailedReady
	return true
}

// missing must be called with mu held
func (s *session) missing() error {
	var missing []string
	if s.token == "" {
		missing = append(missing, "token")
	}
	if s.httpClient == nil {
		missing = append(missing, "transport")
	}
	if s.user == nil {
		missing = append(missing, "account")
	}
	if len(s.ref.systems) == 0 {
		missing = append(missing, "systems")
	}
	if len(s.ref.goods) == 0 {
		missing = append(missing, "goods")
	}
	if len(s.ref.shipTypes) == 0 {
		missing = append(missing, "ship types")
	}
	if len(s.ref.structureTypes) == 0 {
		missing = append(missing, "structure types")
	}
	if len(s.ref.loanTypes) == 0 {
		missing = append(missing, "loan types")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrBootstrapIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

func (s *session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *session) Systems() []System {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ref.systems == nil {
		return nil
	}
	systems := make([]System, len(s.ref.systems))
	for i, sys := range s.ref.systems {
		sys.Locations = cloneLocations(sys.Locations)
		systems[i] = sys
	}
	return systems
}

// locations returns a copy of every cached location across all systems
func (s *session) locations() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Location
	for _, sys := range s.ref.systems {
		all = append(all, cloneLocations(sys.Locations)...)
	}
	return all
}

func (s *session) Goods() []Good {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ref.goods)
}

func (s *session) ShipTypes() []ShipType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ref.shipTypes)
}

func (s *session) StructureTypes() []StructureType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ref.structureTypes == nil {
		return nil
	}
	out := make([]StructureType, len(s.ref.structureTypes))
	for i, st := range s.ref.structureTypes {
		st.AllowedLocationTypes = slices.Clone(st.AllowedLocationTypes)
		st.AllowedPlanetTraits = slices.Clone(st.AllowedPlanetTraits)
		st.Consumes = slices.Clone(st.Consumes)
		st.Produces = slices.Clone(st.Produces)
		out[i] = st
	}
	return out
}

func (s *session) LoanTypes() []LoanType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ref.loanTypes)
}

func cloneLocations(locations []Location) []Location {
	if locations == nil {
		return nil
	}
	out := make([]Location, len(locations))
	for i, loc := range locations {
		loc.Traits = slices.Clone(loc.Traits)
		loc.Messages = slices.Clone(loc.Messages)
		if loc.DockedShips != nil {
			docked := *loc.DockedShips
			loc.DockedShips = &docked
		}
		out[i] = loc
	}
	return out
}
