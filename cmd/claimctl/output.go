package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/claimdesk/internal/upload"
)

// printView writes the outcome of a submission the way the result panel
// lays it out.
func printView(w io.Writer, v upload.View) error {
	var sb strings.Builder

	switch {
	case v.Error != "":
		fmt.Fprintf(&sb, "Error: %s\n", v.Error)
	case v.Result != nil:
		r := v.Result
		sb.WriteString("Processing Result:\n")
		fmt.Fprintf(&sb, "Message: %s\n", r.Message)
		fmt.Fprintf(&sb, "Classification: %s\n", r.Classification)
		fmt.Fprintf(&sb, "Storage Path: %s\n", r.StoragePath)
		writeBlock(&sb, "Extracted Text", r.ExtractedText)
		writeBlock(&sb, "Summary", r.Summary)
		writeBlock(&sb, "Metrics", r.Metrics)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBlock(sb *strings.Builder, title, body string) {
	fmt.Fprintf(sb, "\n%s:\n", title)
	if body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
}
