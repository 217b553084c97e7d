// Package browser owns the rendering session used by the collector. The
// Session interface is the only thing the rest of the pipeline sees; the
// chromedp implementation lives behind it.
package browser

import "time"

// Session is the rendering capability the collector consumes. A session is
// exclusively owned by one collection run and must be closed on every exit
// path.
type Session interface {
	// Navigate loads the given URL. Failure here is fatal for the run.
	Navigate(url string) error

	// Snapshot returns the rendered page as HTML. A partial or empty
	// snapshot is not an error.
	Snapshot() (string, error)

	// ScrollMore triggers the next increment of content.
	ScrollMore() error

	// Wait blocks for the settle delay between scroll iterations.
	Wait(d time.Duration)

	// DismissOverlays clicks away consent prompts on a best-effort basis.
	// Failures are swallowed.
	DismissOverlays()

	Close() error
}
