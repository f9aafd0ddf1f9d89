// Package testing drives Bubbletea models step by step in tests.
package testing

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
)

// TestHarness runs a model through Init and a sequence of steps, feeding
// the messages produced by commands back into Update the way the Bubbletea
// runtime would.
//
//	uitesting.NewTestHarness(t, view).
//		Step(uitesting.TestStep[*UploadView]{Name: "queued", Msg: eventMsg{...}}).
//		Expect(uitesting.TestStep[*UploadView]{Name: "refreshed", ExpectedMsgType: loadedMsg{}}).
//		Finally(uitesting.TestStep[*UploadView]{Name: "done"}).
//		Run(t)
//
// Expect steps intercept, in order, the messages produced by commands.
// A Finally step intercepts one more message and stops command processing.
type TestHarness[T tea.Model] struct {
	model     T
	steps     []TestStep[T]
	expected  []TestStep[T]
	final     *TestStep[T]
	goldie    *goldie.Goldie
	nextIndex int
	stopped   bool
}

// TestStep is one message sent to Update followed by assertions.
type TestStep[T tea.Model] struct {
	Name string

	// Msg is sent to Update. Nil only renders the current state. Expect and
	// Finally steps leave it nil; their message comes from a command.
	Msg tea.Msg

	// ExpectedMsgType restricts which message an Expect/Finally step
	// accepts, e.g. loadedMsg{}.
	ExpectedMsgType tea.Msg

	// MessageAssert inspects the intercepted message before Update sees it.
	MessageAssert func(t *testing.T, msg tea.Msg)

	// ViewGolden compares View() with testdata/<ViewGolden>.golden
	// (go test -update regenerates it).
	ViewGolden string

	ViewAssert  func(t *testing.T, view string)
	ModelAssert func(t *testing.T, m T)

	SkipViewAssertion bool
}

// NewTestHarness forces the ASCII color profile so rendered views carry
// no escape codes.
func NewTestHarness[T tea.Model](t *testing.T, model T) *TestHarness[T] {
	t.Helper()

	lipgloss.SetColorProfile(termenv.Ascii)

	return &TestHarness[T]{
		model: model,
		goldie: goldie.New(t,
			goldie.WithFixtureDir("testdata"),
			goldie.WithNameSuffix(".golden"),
		),
	}
}

func (h *TestHarness[T]) Step(step TestStep[T]) *TestHarness[T] {
	h.steps = append(h.steps, step)
	return h
}

func (h *TestHarness[T]) Expect(step TestStep[T]) *TestHarness[T] {
	h.expected = append(h.expected, step)
	return h
}

func (h *TestHarness[T]) Finally(step TestStep[T]) *TestHarness[T] {
	h.final = &step
	return h
}

// Run calls Init, then executes every step in order.
func (h *TestHarness[T]) Run(t *testing.T) {
	t.Helper()

	h.nextIndex = 0
	h.stopped = false

	h.process(t, h.model.Init(), 0)

	for _, step := range h.steps {
		if h.stopped {
			break
		}

		t.Run(step.Name, func(t *testing.T) {
			if step.Msg != nil {
				cmd := h.update(t, step.Msg)
				h.process(t, cmd, 0)
			}
			h.assert(t, step)
		})
	}
}

func (h *TestHarness[T]) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()

	updated, cmd := h.model.Update(msg)
	model, ok := updated.(T)
	if !ok {
		t.Fatalf("model %T is not %T", updated, h.model)
	}
	h.model = model
	return cmd
}

// maxCommandDepth bounds self-rescheduling commands such as spinner ticks.
const maxCommandDepth = 10

func (h *TestHarness[T]) process(t *testing.T, cmd tea.Cmd, depth int) {
	t.Helper()

	if cmd == nil || h.stopped {
		return
	}
	if depth >= maxCommandDepth {
		t.Log("max command depth exceeded")
		return
	}

	msg := cmd()
	if msg == nil {
		return
	}

	// tea.Batch returns its commands as a message; run each of them.
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.process(t, c, depth+1)
		}
		return
	}

	if h.intercept(t, msg) {
		return
	}

	h.process(t, h.update(t, msg), depth+1)
}

// intercept hands msg to the next Expect or Finally step when one is
// waiting for it.
func (h *TestHarness[T]) intercept(t *testing.T, msg tea.Msg) bool {
	t.Helper()

	if h.nextIndex < len(h.expected) {
		step := h.expected[h.nextIndex]
		if !matches(msg, step.ExpectedMsgType) {
			if isFrameworkMessage(msg) {
				return false
			}
			t.Fatalf("unexpected message while waiting for step %q (type %s): %T %+v",
				step.Name, typeName(step.ExpectedMsgType), msg, msg)
		}
		h.nextIndex++
		h.deliver(t, step, msg)
		return true
	}

	if h.final != nil {
		if !matches(msg, h.final.ExpectedMsgType) {
			if isFrameworkMessage(msg) {
				return false
			}
			t.Fatalf("unexpected message before final step %q (type %s): %T %+v",
				h.final.Name, typeName(h.final.ExpectedMsgType), msg, msg)
		}
		h.deliver(t, *h.final, msg)
		h.stopped = true
		return true
	}

	return false
}

func (h *TestHarness[T]) deliver(t *testing.T, step TestStep[T], msg tea.Msg) {
	t.Helper()

	if step.MessageAssert != nil {
		step.MessageAssert(t, msg)
	}
	_ = h.update(t, msg)

	t.Run(step.Name, func(t *testing.T) {
		h.assert(t, step)
	})
}

func (h *TestHarness[T]) assert(t *testing.T, step TestStep[T]) {
	t.Helper()

	if !step.SkipViewAssertion {
		view := normalizeView(h.model.View())
		if step.ViewGolden != "" {
			h.goldie.Assert(t, step.ViewGolden, []byte(view))
		}
		if step.ViewAssert != nil {
			step.ViewAssert(t, view)
		}
	}

	if step.ModelAssert != nil {
		step.ModelAssert(t, h.model)
	}
}

// isFrameworkMessage reports messages that come from the runtime or from
// widgets rather than from the model's own commands.
func isFrameworkMessage(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg, tea.WindowSizeMsg:
		return true
	}
	// spinner.TickMsg and friends live in other packages; treat any
	// message type named *TickMsg as a widget tick.
	return strings.HasSuffix(reflect.TypeOf(msg).Name(), "TickMsg")
}

func matches(msg, expected tea.Msg) bool {
	if expected != nil {
		return reflect.TypeOf(msg) == reflect.TypeOf(expected)
	}
	return !isFrameworkMessage(msg)
}

func typeName(msg tea.Msg) string {
	if msg == nil {
		return "any async message"
	}
	return reflect.TypeOf(msg).String()
}

func normalizeView(view string) string {
	view = strings.TrimSpace(view)
	return strings.ReplaceAll(view, "\r\n", "\n")
}

// AssertContains checks that view contains substring.
func AssertContains(t *testing.T, view, substring string) {
	t.Helper()
	if !strings.Contains(view, substring) {
		t.Errorf("View does not contain expected substring.\nExpected substring: %q\nActual view:\n%s", substring, view)
	}
}

// AssertNotContains checks that view does not contain substring.
func AssertNotContains(t *testing.T, view, substring string) {
	t.Helper()
	if strings.Contains(view, substring) {
		t.Errorf("View contains unexpected substring.\nUnexpected substring: %q\nActual view:\n%s", substring, view)
	}
}
