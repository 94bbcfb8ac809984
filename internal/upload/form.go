package upload

import (
	"context"
	"errors"
	"sync"

	"github.com/claimdesk/internal/model"
	"github.com/claimdesk/internal/processor"
)

// NoFileMessage is shown when Submit is called with nothing selected.
const NoFileMessage = "Please select a file first."

var (
	// ErrNoFile is returned by Submit when no document is selected.
	ErrNoFile = errors.New(NoFileMessage)
	// ErrInFlight is returned by Submit while an earlier submission is
	// still waiting on the processing service.
	ErrInFlight = errors.New("a submission is already in progress")
)

// Form holds the state of one upload form: the selected document, the last
// result or error, and whether a submission is in flight. At most one of
// result and error is set.
type Form struct {
	processor processor.Processor

	mu       sync.Mutex
	selected *model.Document
	result   *model.Result
	errMsg   string
	inFlight bool
}

func NewForm(p processor.Processor) *Form {
	return &Form{processor: p}
}

// Select replaces the selected document and clears any shown outcome.
// A nil document clears the selection.
func (f *Form) Select(doc *model.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectLocked(doc)
}

// TrySelect is Select for callers about to submit: while a submission is
// in flight it returns ErrInFlight and leaves the form untouched.
func (f *Form) TrySelect(doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return ErrInFlight
	}
	f.selectLocked(doc)
	return nil
}

func (f *Form) selectLocked(doc *model.Document) {
	f.selected = doc
	f.result = nil
	f.errMsg = ""
}

// Submit sends the selected document to the processing service and records
// the outcome. The returned error mirrors the recorded error text.
func (f *Form) Submit(ctx context.Context) error {
	doc, err := f.begin()
	if err != nil {
		return err
	}
	defer f.finish()

	result, err := f.processor.Process(ctx, *doc)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.errMsg = err.Error()
		return err
	}
	f.result = result
	return nil
}

func (f *Form) begin() (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return nil, ErrInFlight
	}
	if f.selected == nil {
		f.result = nil
		f.errMsg = NoFileMessage
		return nil, ErrNoFile
	}

	f.inFlight = true
	f.result = nil
	f.errMsg = ""
	return f.selected, nil
}

func (f *Form) finish() {
	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()
}

// InFlight reports whether a submission is waiting on the service.
func (f *Form) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Selected returns the name of the selected document, or "" if none.
func (f *Form) Selected() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected == nil {
		return ""
	}
	return f.selected.Name
}

// View returns a render-ready snapshot of the form.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		Busy:        f.inFlight,
		ButtonLabel: idleLabel,
		Error:       f.errMsg,
	}
	if f.inFlight {
		v.ButtonLabel = busyLabel
	}
	if f.selected != nil {
		v.SelectedFile = f.selected.Name
	}
	if f.result != nil {
		v.Result = newResultView(f.result)
	}
	return v
}
