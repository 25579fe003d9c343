package registration

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// Form is the transient input state of the registration screen
type Form struct {
	Email           string
	DisplayName     string
	Password        string
	ConfirmPassword string
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithLoadingObserver registers a callback invoked on every loading transition
func WithLoadingObserver(fn func(loading bool)) ControllerOption {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithForm seeds the controller's fields
func WithForm(form Form) ControllerOption {
	return func(c *Controller) {
		c.form = form
	}
}

// Controller holds one registration screen's state: the four fields, the
// loading flag, and the last alert shown.
//
// State moves idle -> loading -> idle. Submitting while loading is refused,
// which is what the disabled submit button does on the screen.
type Controller struct {
	service  *Service
	observer func(loading bool)

	loading atomic.Bool

	mu    sync.Mutex
	form  Form
	alert *Alert
}

// SetEmail replaces the email field
func (c *Controller) SetEmail(v string) {
	c.mu.Lock()
	c.form.Email = v
	c.mu.Unlock()
}

// SetDisplayName replaces the display name field
func (c *Controller) SetDisplayName(v string) {
	c.mu.Lock()
	c.form.DisplayName = v
	c.mu.Unlock()
}

// SetPassword replaces the password field
func (c *Controller) SetPassword(v string) {
	c.mu.Lock()
	c.form.Password = v
	c.mu.Unlock()
}

// SetConfirmPassword replaces the confirm password field
func (c *Controller) SetConfirmPassword(v string) {
	c.mu.Lock()
	c.form.ConfirmPassword = v
	c.mu.Unlock()
}

// Form returns a snapshot of the fields
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Alert returns the last alert, or nil if none has been shown
func (c *Controller) Alert() *Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.alert == nil {
		return nil
	}
	a := *c.alert
	return &a
}

// Loading reports whether a submission is in flight
func (c *Controller) Loading() bool {
	return c.loading.Load()
}

// SubmitLabel is the submit button's label for the current state
func (c *Controller) SubmitLabel() string {
	if c.Loading() {
		return "Cadastrando..."
	}
	return "Cadastrar"
}

// Submit validates the form and, if valid, runs the registration sequence.
// Validation failures never reach the identity service. On success the fields
// are cleared; on failure they are kept. Either way an alert is recorded.
func (c *Controller) Submit(ctx context.Context) (*Result, error) {
	if c.Loading() {
		return nil, ErrSubmitInProgress
	}

	form := c.Form()

	if form.Password != form.ConfirmPassword {
		c.setAlert(errorAlert(MsgPasswordMismatch))
		return nil, ErrPasswordMismatch
	}

	displayName := strings.TrimSpace(form.DisplayName)
	if displayName == "" {
		c.setAlert(errorAlert(MsgDisplayNameRequired))
		return nil, ErrDisplayNameRequired
	}

	if !c.loading.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	c.notify(true)
	defer func() {
		c.loading.Store(false)
		c.notify(false)
	}()

	result, err := c.service.register(ctx, form.Email, form.Password, displayName)
	if err != nil {
		c.setAlert(c.service.alertFor(err))
		return nil, err
	}

	alert := successAlert()
	c.mu.Lock()
	c.form = Form{}
	c.alert = &alert
	c.mu.Unlock()

	return result, nil
}

func (c *Controller) setAlert(a Alert) {
	c.mu.Lock()
	c.alert = &a
	c.mu.Unlock()
}

func (c *Controller) notify(loading bool) {
	if c.observer != nil {
		c.observer(loading)
	}
}
