package tasklist

import (
	"context"
	"strings"
	"sync"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/model"
)

// Gateway is the slice of the remote API the controller needs. *api.Client
// satisfies it; tests substitute a fake.
type Gateway interface {
	ListTasks(ctx context.Context, statusFilter string) ([]model.Task, error)
	CreateTask(ctx context.Context, in api.CreateTaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch map[string]any) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// Controller owns the in-memory task collection shown to the user. The
// collection is a cache of server truth, rebuilt wholesale by Refresh after
// every confirmed mutation; there is no merging and no optimistic edit.
//
// Methods are synchronous: they run the gateway call and settle the state
// before returning. Overlapping calls from different goroutines are allowed
// (the TUI runs them in tea.Cmds); each completion triggers its own refresh,
// so the displayed state is whatever the last-completing refresh observed.
type Controller struct {
	gw Gateway

	// StatusFilter, when set, is forwarded verbatim to ListTasks
	// ("completed" or "pending").
	StatusFilter string

	mu    sync.Mutex
	state State
	tasks []model.Task
	err   error
}

func New(gw Gateway) *Controller {
	return &Controller{gw: gw, state: StateIdle}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tasks returns a snapshot of the current collection.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Err returns the last failure, or nil. It is cleared by the next
// successful refresh.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Find(id string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (c *Controller) setLoading() {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()
}

// fail records a mutation/refresh failure. The previously loaded collection
// is kept: a failed toggle must not blank the list the user is looking at.
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.state = StateFailed
	c.err = err
	c.mu.Unlock()
	return err
}

// Refresh reloads the collection from the server and replaces it wholesale.
// This is the single reconciliation point for direct actions and chat-driven
// mutations alike.
func (c *Controller) Refresh(ctx context.Context) error {
	c.setLoading()
	tasks, err := c.gw.ListTasks(ctx, c.StatusFilter)
	if err != nil {
		return c.fail(err)
	}
	c.mu.Lock()
	c.state = StateLoaded
	c.tasks = tasks
	c.err = nil
	c.mu.Unlock()
	return nil
}

// Add creates a task and refreshes. Blank titles are rejected locally: no
// network call, collection unchanged, state untouched.
func (c *Controller) Add(ctx context.Context, title string) error {
	if strings.TrimSpace(title) == "" {
		return &api.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	c.setLoading()
	if _, err := c.gw.CreateTask(ctx, api.CreateTaskInput{Title: title}); err != nil {
		return c.fail(err)
	}
	return c.Refresh(ctx)
}

// Toggle flips completion by sending the negation of the task's current
// value as a partial update. The target value is computed client-side; the
// server does not interpret a "toggle" command.
func (c *Controller) Toggle(ctx context.Context, id string) error {
	t, ok := c.Find(id)
	if !ok {
		return &api.ValidationError{Field: "id", Reason: "unknown task " + id}
	}
	c.setLoading()
	patch := map[string]any{"is_completed": !t.IsCompleted}
	if _, err := c.gw.UpdateTask(ctx, id, patch); err != nil {
		return c.fail(err)
	}
	return c.Refresh(ctx)
}

// Remove deletes a task and refreshes. A 404 from the server is surfaced,
// not swallowed: the caller needs to know its local state was stale.
func (c *Controller) Remove(ctx context.Context, id string) error {
	c.setLoading()
	if err := c.gw.DeleteTask(ctx, id); err != nil {
		return c.fail(err)
	}
	return c.Refresh(ctx)
}
