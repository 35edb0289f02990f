package mandel

// Messages exchanged between a remote shell and the serving process over a
// websocket. Controls and statuses travel as JSON text messages, rendered
// frames as binary PNG messages.

// Op names a control sent by a remote shell.
type Op string

const (
	OpResize     Op = "resize"     // Width, Height
	OpBeginDrag  Op = "beginDrag"  // no arguments
	OpDragBy     Op = "dragBy"     // X, Y as the drag delta
	OpEndDrag    Op = "endDrag"    // Committed
	OpBeginZoom  Op = "beginZoom"  // X, Y as the focus
	OpZoomBy     Op = "zoomBy"     // X, Y, Scale
	OpEndZoom    Op = "endZoom"    // no arguments
	OpZoomStep   Op = "zoomStep"   // X, Y, Scale
	OpReset      Op = "reset"      // no arguments
	OpDetail     Op = "detail"     // Detail
	OpColours    Op = "colours"    // Name
	OpLocation   Op = "location"   // Location
	OpJuliaParam Op = "juliaParam" // X, Y in the complex plane
	OpBookmark   Op = "bookmark"   // Name of a built-in landmark
)

// Control is a single inbound request from a remote shell.
type Control struct {
	Op        Op        `json:"op"`
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	Scale     float64   `json:"scale,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Committed bool      `json:"committed,omitempty"`
	Detail    float64   `json:"detail,omitempty"`
	Name      string    `json:"name,omitempty"`
	Location  *Location `json:"location,omitempty"`
}

// StatusKind classifies a Status.
type StatusKind string

const (
	StatusHello    StatusKind = "hello"
	StatusComplete StatusKind = "complete"
	StatusMaxDepth StatusKind = "maxDepth"
	StatusError    StatusKind = "error"
)

// Status is an outbound notification for a remote shell.
type Status struct {
	Kind          StatusKind `json:"kind"`
	Message       string     `json:"message,omitempty"`
	ElapsedMillis int64      `json:"elapsedMillis,omitempty"`
	ZoomLevel     int        `json:"zoomLevel,omitempty"`
	MaxIterations int        `json:"maxIterations,omitempty"`
	Workers       int        `json:"workers,omitempty"`
	Location      *Location  `json:"location,omitempty"`
}
