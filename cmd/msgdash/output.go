package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Exit codes.
const (
	exitSuccess = 0 // command succeeded
	exitFailure = 1 // the backend or an operation failed
	exitUsage   = 2 // bad flags, arguments or configuration
)

var validFormats = []string{"text", "json", "yaml"}

// exitError 携带退出码的错误
// exitError carries the process exit code for a failed command
type exitError struct {
	Code    int
	Message string
	Err     error
}

func (e *exitError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *exitError) Unwrap() error {
	return e.Err
}

func newExitError(code int, message string) *exitError {
	return &exitError{Code: code, Message: message}
}

func wrapExitError(code int, message string, err error) *exitError {
	return &exitError{Code: code, Message: message, Err: err}
}

// exitCode returns exitFailure for errors that carry no code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitFailure
}

// response 结构化输出的统一外层
// response is the envelope of json and yaml output
type response struct {
	Status string         `json:"status" yaml:"status"`
	Data   any            `json:"data,omitempty" yaml:"data,omitempty"`
	Error  *responseError `json:"error,omitempty" yaml:"error,omitempty"`
}

type responseError struct {
	Code    int    `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// outputFormatter writes command results as text, json or yaml. Progress
// notices go to Writer in text mode and to ErrWriter otherwise so structured
// output stays parseable.
type outputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

func (f *outputFormatter) structured() bool {
	return f.Format == "json" || f.Format == "yaml"
}

// Success writes data in the structured formats, or calls text otherwise.
func (f *outputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.structured() {
		return f.encode(response{Status: "ok", Data: data})
	}
	if text != nil {
		text(f.Writer)
	}
	return nil
}

// Error reports a failed command.
func (f *outputFormatter) Error(code int, err error) {
	if f.structured() {
		if encErr := f.encode(response{Status: "error", Error: &responseError{Code: code, Message: err.Error()}}); encErr == nil {
			return
		}
	}
	fmt.Fprintf(f.errWriter(), "Error: %v\n", err)
}

// Notice prints a progress line.
func (f *outputFormatter) Notice(msg string) {
	w := f.Writer
	if f.structured() {
		w = f.errWriter()
	}
	fmt.Fprintln(w, msg)
}

// Warn prints a recoverable failure to ErrWriter.
func (f *outputFormatter) Warn(msg string) {
	fmt.Fprintln(f.errWriter(), msg)
}

func (f *outputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *outputFormatter) encode(v response) error {
	switch f.Format {
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
