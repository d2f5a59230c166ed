package orgs

import "github.com/lotas/lernbruecke/internal/types"

// Phase is the picker's lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

// Switch is the organization-picker state machine:
//
//	Idle --Open--> Loading --Resolve(ok)--> Ready
//	                       --Resolve(err)--> Failed
//	Ready --Select/Close--> Idle
//	Failed --Close--> Idle
//
// The organization list lives only inside Ready; it is never persisted
// and is discarded on every transition back to Idle.
type Switch struct {
	phase         Phase
	organizations []types.Organization
	message       string
}

func (s *Switch) Phase() Phase { return s.phase }

// Organizations returns the fetched list while in Ready, nil otherwise.
func (s *Switch) Organizations() []types.Organization {
	if s.phase != Ready {
		return nil
	}
	return s.organizations
}

// Message returns the user-displayable error while in Failed.
func (s *Switch) Message() string {
	if s.phase != Failed {
		return ""
	}
	return s.message
}

// Open moves Idle to Loading. It reports whether the caller should
// start a fetch; opening an already-open picker does nothing.
func (s *Switch) Open() bool {
	if s.phase != Idle {
		return false
	}
	s.phase = Loading
	return true
}

// Resolve applies a fetch result while Loading. Results arriving in any
// other phase are stale (the picker was closed meanwhile) and dropped.
func (s *Switch) Resolve(organizations []types.Organization, err error) {
	if s.phase != Loading {
		return
	}
	if err != nil {
		s.phase = Failed
		s.message = err.Error()
		return
	}
	s.phase = Ready
	s.organizations = organizations
}

// Select commits the organization at index i. Only honored in Ready;
// the machine returns to Idle on commit.
func (s *Switch) Select(i int) (types.Organization, bool) {
	if s.phase != Ready || i < 0 || i >= len(s.organizations) {
		return types.Organization{}, false
	}
	chosen := s.organizations[i]
	s.reset()
	return chosen, true
}

// Close abandons the picker from any phase.
func (s *Switch) Close() {
	s.reset()
}

func (s *Switch) reset() {
	s.phase = Idle
	s.organizations = nil
	s.message = ""
}
