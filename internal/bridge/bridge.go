// Package bridge keeps the browser surface consistent with the stored
// session and propagates organization changes in both directions:
// native picker to page, and page to native. It is driven by a single
// event loop and never surfaces an error outward; every failure here is
// logged and ignored, leaving the page to the platform's own auth
// handling.
package bridge

import (
	"encoding/json"
	"time"

	"github.com/lotas/lernbruecke/internal/applog"
	"github.com/lotas/lernbruecke/internal/auth"
	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/surface"
	"github.com/lotas/lernbruecke/internal/types"
)

// Destination is a named page the native layer can jump to directly.
type Destination string

const (
	DestExplore            Destination = "/explore"
	DestCreateOrganization Destination = "/select-organization"
	DestProfileSettings    Destination = "/app/account/settings"
	DestGoogleLogin        Destination = "/auth/google"
)

// Bridge owns the one active surface connection.
type Bridge struct {
	Store   store.Session
	History store.History // optional
	Surface surface.Conn
	Bus     *Bus
	Gateway *auth.Gateway
	BaseURL string

	nav types.NavigationState
}

func New(s store.Session, conn surface.Conn, bus *Bus, gw *auth.Gateway, baseURL string) *Bridge {
	return &Bridge{
		Store:   s,
		Surface: conn,
		Bus:     bus,
		Gateway: gw,
		BaseURL: baseURL,
	}
}

// Nav returns the surface's state as of the last navigation event.
func (b *Bridge) Nav() types.NavigationState {
	return b.nav
}

// HandleEvent applies one surface event. Malformed or unknown events
// are logged and dropped; the bridge never fails on page input.
func (b *Bridge) HandleEvent(ev surface.Event) {
	switch ev.Type {
	case surface.TypeReady:
		b.mount()

	case surface.TypeNavigated:
		b.navigated(ev)

	case surface.TypeOrganizationChanged:
		if ev.OrganizationID == "" {
			applog.Info("bridge.org.empty")
			return
		}
		b.Store.SaveOrganizationID(ev.OrganizationID)
		applog.Info("bridge.org.page", "org", ev.OrganizationID)
		b.Bus.Publish(Notice{Kind: OrganizationChanged, OrganizationID: ev.OrganizationID})

	case surface.TypeSessionEstablished:
		b.adoptSession(ev)

	default:
		if ev.ID != "" && ev.OK != nil {
			if !*ev.OK {
				applog.Info("bridge.cmd.failed", "id", ev.ID, "error", ev.Error)
			}
			return
		}
		applog.Debug("bridge.event.unknown", "type", ev.Type)
	}
}

// mount runs the pre-load handshake when a surface attaches: register
// the cookie script, then point the surface at the last visited URL or
// home. Cookie injection is fire-and-forget — a bad cookie just means
// the page loads unauthenticated and the platform redirects to its own
// login.
func (b *Bridge) mount() {
	if cookie, ok := b.Store.Cookie(); ok && cookie != "" {
		cmd := surface.Command{
			Action: surface.ActionPreload,
			Script: CookiePreloadScript(cookie),
		}
		if err := b.Surface.Send(cmd); err != nil {
			applog.Error("bridge.preload", err)
		}
	}

	url, ok := b.Store.LastURL()
	if !ok || url == "" {
		url = b.BaseURL
	}
	if err := b.Surface.Send(surface.Command{Action: surface.ActionNavigate, URL: url}); err != nil {
		applog.Error("bridge.mount.navigate", err)
	}
}

// Remount replays the attach handshake on the current surface. Used
// after a native login so the fresh cookie reaches the page without
// waiting for a reconnect.
func (b *Bridge) Remount() {
	if !b.Surface.Connected() {
		return
	}
	b.mount()
}

func (b *Bridge) navigated(ev surface.Event) {
	b.nav = types.NavigationState{URL: ev.URL, CanGoBack: ev.CanGoBack}

	// Last write wins, no debouncing: navigations are rare next to
	// the cost of a store write.
	if ev.URL != "" {
		b.Store.SaveLastURL(ev.URL)
		if b.History != nil {
			b.History.RecordVisit(ev.URL, time.Now())
		}
	}

	// Re-arm the organization monitor on every page load.
	cmd := surface.Command{
		Action: surface.ActionMonitor,
		Key:    OrganizationStorageKey,
		Script: MonitorScript(OrganizationStorageKey),
	}
	if err := b.Surface.Send(cmd); err != nil {
		applog.Error("bridge.monitor", err)
	}

	b.Bus.Publish(Notice{Kind: Navigated, URL: ev.URL})
}

func (b *Bridge) adoptSession(ev surface.Event) {
	if ev.Cookie == "" || len(ev.User) == 0 {
		applog.Info("bridge.session.incomplete")
		return
	}
	var user types.User
	if err := json.Unmarshal(ev.User, &user); err != nil {
		applog.Error("bridge.session.decode", err)
		return
	}
	if b.Gateway != nil {
		b.Gateway.AdoptSession(user, ev.Cookie)
	}
	b.Bus.Publish(Notice{Kind: SessionEstablished, User: user})
}

// SelectOrganization commits a native picker choice: persist the id,
// tell the page to converge on the same value and reload, and notify
// native subscribers. The end state is identical to a page-originated
// change.
func (b *Bridge) SelectOrganization(id string) {
	b.Store.SaveOrganizationID(id)
	cmd := surface.Command{
		Action:         surface.ActionSetOrganization,
		Key:            OrganizationStorageKey,
		OrganizationID: id,
		Reload:         true,
	}
	if err := b.Surface.Send(cmd); err != nil {
		applog.Error("bridge.org.push", err)
	}
	applog.Info("bridge.org.native", "org", id)
	b.Bus.Publish(Notice{Kind: OrganizationChanged, OrganizationID: id})
}

// Back navigates the surface back, only when its history allows it.
func (b *Bridge) Back() {
	if !b.nav.CanGoBack {
		return
	}
	if err := b.Surface.Send(surface.Command{Action: surface.ActionBack}); err != nil {
		applog.Error("bridge.back", err)
	}
}

// Home forces navigation to the platform root.
func (b *Bridge) Home() {
	if err := b.Surface.Send(surface.Command{Action: surface.ActionNavigate, URL: b.BaseURL}); err != nil {
		applog.Error("bridge.home", err)
	}
}

// Refresh reloads the current page.
func (b *Bridge) Refresh() {
	if err := b.Surface.Send(surface.Command{Action: surface.ActionReload}); err != nil {
		applog.Error("bridge.refresh", err)
	}
}

// GoTo jumps to one of the named destinations.
func (b *Bridge) GoTo(dest Destination) {
	cmd := surface.Command{Action: surface.ActionNavigate, URL: b.BaseURL + string(dest)}
	if err := b.Surface.Send(cmd); err != nil {
		applog.Error("bridge.goto", err, "dest", string(dest))
	}
}
