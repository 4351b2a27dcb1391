// internal/server/server.go
package server

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DataDrake/waterlog"
	"github.com/fsnotify/fsnotify"

	"plume/internal/builder"
	"plume/internal/util"
)

// BuildFunc performs a full site build.
type BuildFunc func(builder.BuildOptions) error

const debounce = 500 * time.Millisecond

// Run builds once, then serves outputDir on port and rebuilds whenever one
// of the watched paths changes. Connected browsers reload after each
// successful rebuild.
func Run(port int, outputDir string, watch []string, build BuildFunc, opts builder.BuildOptions) error {
	opts.CleanDestination = true
	if err := build(opts); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	hub := newHub()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatches(watcher, watch); err != nil {
		return err
	}

	opts.CleanDestination = false
	go watchForChanges(watcher, hub, build, opts)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	mux.Handle("/", liveReloadWrapper(http.FileServer(http.Dir(outputDir))))

	addr := fmt.Sprintf(":%d", port)
	waterlog.Goodln("Serving site on http://localhost" + addr)
	waterlog.Infoln("Press Ctrl+C to stop")
	return http.ListenAndServe(addr, mux)
}

// addWatches registers every directory under the given paths. Files, and
// paths that do not exist yet, are watched through their parent directory so
// renames and later creation are still noticed.
func addWatches(watcher *fsnotify.Watcher, paths []string) error {
	seen := make(map[string]bool)
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if seen[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			waterlog.Warnf("Could not watch %s: %v\n", dir, err)
			return
		}
		waterlog.Debugf("Watching directory: %s\n", dir)
		seen[dir] = true
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			if parent := filepath.Dir(path); util.PathExists(parent) {
				add(parent)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
	}
	return nil
}

func isRebuildEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func watchForChanges(watcher *fsnotify.Watcher, hub *Hub, build BuildFunc, opts builder.BuildOptions) {
	var lastBuild time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isRebuildEvent(event) || time.Since(lastBuild) <= debounce {
				continue
			}
			// Let editors finish writing before reading the tree.
			time.Sleep(100 * time.Millisecond)

			waterlog.Infof("Change detected in %s, rebuilding...\n", event.Name)
			if err := build(opts); err != nil {
				waterlog.Warnf("Rebuild failed: %v\n", err)
			} else {
				n := hub.broadcast([]byte("reload"))
				waterlog.Goodln(fmt.Sprintf("Site rebuilt, reloading %d client(s).", n))
			}
			lastBuild = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			waterlog.Warnf("Watcher error: %v\n", err)
		}
	}
}

func isHTMLRequest(path string) bool {
	return strings.HasSuffix(path, ".html") || strings.HasSuffix(path, "/")
}

// liveReloadWrapper disables caching and injects the reload script into
// successful HTML responses.
func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if !isHTMLRequest(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		rec := newBufferedWriter()
		next.ServeHTTP(rec, r)

		for key, values := range rec.header {
			if key == "Content-Length" {
				continue
			}
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		body := rec.body.Bytes()
		if rec.status == http.StatusOK {
			body = bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(rec.status)
		w.Write(body)
	})
}

// bufferedWriter captures a response so it can be rewritten before sending.
type bufferedWriter struct {
	body   bytes.Buffer
	header http.Header
	status int
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedWriter) Header() http.Header         { return b.header }
func (b *bufferedWriter) Write(p []byte) (int, error) { return b.body.Write(p) }
func (b *bufferedWriter) WriteHeader(status int)      { b.status = status }

const liveReloadScript = `<script>
  (function() {
    var socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection lost. Restart 'plume serve'.");
    };
  })();
</script>
`
