package upload

import "context"

// Backend is the upload service the orchestrator drives.
type Backend interface {
	ListRecent(ctx context.Context) ([]Item, error)
	Upload(ctx context.Context, req Request, onProgress ProgressFunc) (*Item, error)
	Pause(ctx context.Context, id string) (*Item, error)
	Resume(ctx context.Context, id string) (*Item, error)
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Item, error)
	Stats(ctx context.Context) (Stats, error)
}

// Previewer produces a displayable encoding of an image file.
type Previewer interface {
	Preview(ctx context.Context, f File) (string, error)
}

// Event is published by the orchestrator. Events are delivered in the order
// the state changes that produced them happened.
type Event interface {
	event()
}

// Listener receives events. It must not call back into the orchestrator
// synchronously; hand the event off (for example over a channel) instead.
type Listener func(Event)

// ItemUpdated carries the new state of an item in the active set.
type ItemUpdated struct {
	Item Item
}

// ItemRemoved is published when a cancelled item leaves the active set.
type ItemRemoved struct {
	ID   string
	Name string
}

// FileRejected is published for every file that fails validation.
type FileRejected struct {
	Err *ValidationError
}

// UploadFailed is published when an item enters the error state.
type UploadFailed struct {
	Item Item
	Err  error
}

// SessionUpdated carries a freshly aggregated session summary.
type SessionUpdated struct {
	Progress Progress
}

// Notice is a short user-facing message, such as "Upload paused".
type Notice struct {
	Message string
}

// BatchCompleted is published once when every item of the active set is
// terminal. Completed holds only the items that finished successfully.
type BatchCompleted struct {
	Completed []Item
	Recent    []Item
}

func (ItemUpdated) event()    {}
func (ItemRemoved) event()    {}
func (FileRejected) event()   {}
func (UploadFailed) event()   {}
func (SessionUpdated) event() {}
func (Notice) event()         {}
func (BatchCompleted) event() {}
