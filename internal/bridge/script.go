package bridge

import (
	"fmt"
	"strconv"
)

// OrganizationStorageKey is the localStorage key the platform's own
// frontend uses for the selected organization. The monitor script
// watches writes to it; setOrganization commands write it.
const OrganizationStorageKey = "selectedOrganizationId"

// CookiePreloadScript returns the script the surface must run before
// any page script: it seeds document.cookie with the stored session so
// the page sees the same authenticated session the native layer holds.
func CookiePreloadScript(cookie string) string {
	return fmt.Sprintf("(function() { document.cookie = %s; })();", strconv.Quote(cookie))
}

// MonitorScript returns the post-load script that intercepts the
// page's own writes to the organization-selection key and forwards the
// new value to the native layer. Installing it twice is harmless.
func MonitorScript(key string) string {
	q := strconv.Quote(key)
	return fmt.Sprintf(`(function() {
  if (window.__lbOrgMonitor) { return; }
  window.__lbOrgMonitor = true;
  var original = window.localStorage.setItem.bind(window.localStorage);
  window.localStorage.setItem = function(k, v) {
    original(k, v);
    if (k === %s && window.__lbPost) {
      window.__lbPost(JSON.stringify({ type: "ORGANIZATION_CHANGED", organizationId: v }));
    }
  };
})();`, q)
}
