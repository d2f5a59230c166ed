package orgs

import (
	"errors"
	"testing"

	"github.com/lotas/lernbruecke/internal/types"
)

func two() []types.Organization {
	return []types.Organization{
		{ID: "org-a", Name: "Alpha"},
		{ID: "org-b", Name: "Beta"},
	}
}

func TestSwitchHappyPath(t *testing.T) {
	var s Switch

	if s.Phase() != Idle {
		t.Fatalf("initial phase = %v", s.Phase())
	}
	if !s.Open() {
		t.Fatal("Open from Idle should start a fetch")
	}
	if s.Phase() != Loading {
		t.Fatalf("phase after Open = %v", s.Phase())
	}

	s.Resolve(two(), nil)
	if s.Phase() != Ready {
		t.Fatalf("phase after Resolve = %v", s.Phase())
	}
	if len(s.Organizations()) != 2 {
		t.Fatalf("organizations = %d", len(s.Organizations()))
	}

	chosen, ok := s.Select(1)
	if !ok || chosen.ID != "org-b" {
		t.Errorf("Select(1) = %+v, %v", chosen, ok)
	}
	if s.Phase() != Idle {
		t.Errorf("phase after commit = %v, want Idle", s.Phase())
	}
	if s.Organizations() != nil {
		t.Error("organization list must be discarded on commit")
	}
}

func TestSwitchFetchFailure(t *testing.T) {
	var s Switch
	s.Open()
	s.Resolve(nil, errors.New("network unreachable"))

	if s.Phase() != Failed {
		t.Fatalf("phase = %v, want Failed", s.Phase())
	}
	if s.Message() != "network unreachable" {
		t.Errorf("message = %q", s.Message())
	}

	// Selecting is not defined outside Ready.
	if _, ok := s.Select(0); ok {
		t.Error("Select honored in Failed")
	}

	s.Close()
	if s.Phase() != Idle {
		t.Errorf("phase after Close = %v", s.Phase())
	}
}

func TestSwitchIgnoresStaleResults(t *testing.T) {
	var s Switch
	s.Open()
	s.Close() // picker closed before the fetch came back

	s.Resolve(two(), nil)
	if s.Phase() != Idle {
		t.Errorf("stale resolve advanced the machine to %v", s.Phase())
	}
}

func TestSwitchOpenIsIdempotentWhileBusy(t *testing.T) {
	var s Switch
	if !s.Open() {
		t.Fatal("first Open")
	}
	if s.Open() {
		t.Error("Open while Loading must not start a second fetch")
	}
	s.Resolve(two(), nil)
	if s.Open() {
		t.Error("Open while Ready must not restart")
	}
}

func TestSwitchSelectOutOfRange(t *testing.T) {
	var s Switch
	s.Open()
	s.Resolve(two(), nil)

	if _, ok := s.Select(5); ok {
		t.Error("Select out of range succeeded")
	}
	if s.Phase() != Ready {
		t.Errorf("failed select changed phase to %v", s.Phase())
	}
}
