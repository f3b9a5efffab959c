package domain

import "time"

// Event categories published on the sandbox bus. Each Go type is its own
// category; none of them share a base type.

// KeyPressedEvent is emitted for every key press. Handlers that act on the
// key set Handled so later handlers can ignore it.
type KeyPressedEvent struct {
	Key     string
	Handled bool
}

// MouseMovedEvent is emitted when the pointer moves over the view
type MouseMovedEvent struct {
	X, Y   int
	DX, DY int
}

// WindowResizedEvent is emitted when the view size changes
type WindowResizedEvent struct {
	Width  int
	Height int
}

// DrawModeChangedEvent is emitted after the active demonstration changes
type DrawModeChangedEvent struct {
	From DrawMode
	To   DrawMode
}

// FrameRenderedEvent is emitted after each frame is built
type FrameRenderedEvent struct {
	Stats FrameStats
	At    time.Time
}

// SnapshotRequestedEvent asks for the current frame to be written as PNG
type SnapshotRequestedEvent struct {
	Dir string
}

// SnapshotSavedEvent is emitted once a snapshot is on disk
type SnapshotSavedEvent struct {
	Path string
	Mode DrawMode
	Err  error
}

// QuitRequestedEvent asks the application to shut down
type QuitRequestedEvent struct {
	Reason string
}

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}
