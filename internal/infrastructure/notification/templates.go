package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

const subjectExecutionAssignedFmt = "Purchase order %s: execution ID %s"

type executionAssignedData struct {
	VendorName  string
	PONumber    string
	JobNumber   string
	JobTitle    string
	ExecutionID string
}

var (
	executionAssignedHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/execution_assigned.html"))
	executionAssignedText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/execution_assigned.txt"))
)

func renderExecutionAssigned(to string, data executionAssignedData) (Message, error) {
	var html, text bytes.Buffer
	if err := executionAssignedHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("execute execution_assigned.html: %w", err)
	}
	if err := executionAssignedText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("execute execution_assigned.txt: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf(subjectExecutionAssignedFmt, data.PONumber, data.ExecutionID),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
