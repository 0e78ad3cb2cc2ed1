package deck

import (
	stdctx "context"

	"github.com/gogpu/gpucontext"
)

// Fetcher loads a string-valued data property (typically a URL) into
// usable data. Implementations decide transport and decoding; the
// reconciler only cares about the resolved value or the error.
//
// The reconciler does not retry failed loads.
type Fetcher interface {
	Fetch(ctx stdctx.Context, url string) (any, error)
}

// Inspector receives fire-and-forget notifications about layer
// lifecycle events. Implementations must not call back into the
// manager from a notification; they are invoked mid-pass.
//
// All methods may be called with a shallow snapshot of the layer's
// resolved props. The snapshot must not be mutated.
type Inspector interface {
	// LayerInitialized is called after a fresh layer finishes its
	// first update pass.
	LayerInitialized(id string, props map[string]any)

	// LayerUpdated is called after a matched layer's update pass.
	LayerUpdated(id string, props map[string]any)

	// LayerFinalized is called after a layer is finalized.
	LayerFinalized(id string)
}

// Context is the shared per-pass context stamped onto every layer
// during reconciliation. It is replaced wholesale once per pass, never
// mutated in place, and is treated as read-only by all layers during
// that pass.
type Context struct {
	// Viewport is the active viewport. Required before layers can be
	// reconciled.
	Viewport *Viewport

	// Uniforms are process-wide uniform values forwarded to drawables.
	Uniforms map[string]any

	// Fetcher resolves string-valued data props. Nil disables async
	// property loading; string data values are then passed through
	// unchanged.
	Fetcher Fetcher

	// Inspector, if set, receives lifecycle notifications.
	Inspector Inspector

	// Device is the host application's GPU device provider. The
	// reconciler never touches it; it is passed through to layer
	// state so variants can allocate GPU resources.
	Device gpucontext.DeviceProvider
}
