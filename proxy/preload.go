package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WritePreloadScript synthesizes the /__mf-preload.js response: a small
// client script that prefetches each of the other static mounts, either
// immediately or on DOMContentLoaded depending on document.readyState.
func WritePreloadScript(w http.ResponseWriter, mounts []string) {
	urls, _ := json.Marshal(mounts)

	body := fmt.Sprintf(`(function() {
  var urls = %s;
  function preload() {
    urls.forEach(function(u) {
      fetch(u, { method: "GET", credentials: "same-origin", cache: "default" });
    });
  }
  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", preload);
  } else {
    preload();
  }
})();
`, urls)

	h := w.Header()
	h.Set("Content-Type", "application/javascript; charset=utf-8")
	h.Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
