package upload

import "github.com/claimdesk/internal/model"

const (
	idleLabel = "Upload and Process"
	busyLabel = "Uploading..."
)

// Header is the fixed page banner.
type Header struct {
	Title    string
	Subtitle string
}

// DefaultHeader is shown above every upload form.
var DefaultHeader = Header{
	Title:    "Insurance Claim Processor",
	Subtitle: "Upload your insurance claim documents for processing.",
}

// View is what the page renders for a form.
type View struct {
	Busy         bool        `json:"busy"`
	ButtonLabel  string      `json:"buttonLabel"`
	SelectedFile string      `json:"selectedFile,omitempty"`
	Error        string      `json:"error,omitempty"`
	Result       *ResultView `json:"result,omitempty"`
}

// ResultView holds each result field as display text.
type ResultView struct {
	Message        string `json:"message"`
	Classification string `json:"classification"`
	StoragePath    string `json:"storagePath"`
	ExtractedText  string `json:"extractedText"`
	Summary        string `json:"summary"`
	Metrics        string `json:"metrics"`
}

func newResultView(r *model.Result) *ResultView {
	return &ResultView{
		Message:        r.Message.Display(),
		Classification: r.Classification.Display(),
		StoragePath:    r.StoragePath.Display(),
		ExtractedText:  r.ExtractedText.Display(),
		Summary:        r.Summary.Display(),
		// metrics is always shown as structured text, whatever its shape
		Metrics: r.Metrics.Pretty(),
	}
}
