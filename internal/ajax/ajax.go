// Package ajax builds Patch Responses: ordered lists of client-side commands
// applied to the page without a reload.
package ajax

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// Command is a single client-side instruction.
type Command interface {
	// CommandName is the identifier the client dispatcher switches on.
	CommandName() string
}

// ReplaceCommand replaces the elements matched by Selector with Data.
type ReplaceCommand struct {
	Command  string `json:"command"`
	Selector string `json:"selector"`
	Data     string `json:"data"`
}

// NewReplaceCommand creates a replace command.
func NewReplaceCommand(selector, markup string) *ReplaceCommand {
	return &ReplaceCommand{Command: "replace", Selector: selector, Data: markup}
}

func (c *ReplaceCommand) CommandName() string { return c.Command }

// InvokeCommand calls a named client method. A nil Selector targets the whole document.
type InvokeCommand struct {
	Command  string  `json:"command"`
	Selector *string `json:"selector"`
	Method   string  `json:"method"`
	Args     []any   `json:"args"`
}

// NewInvokeCommand creates an invoke command. Pass an empty selector for none.
func NewInvokeCommand(selector, method string, args ...any) *InvokeCommand {
	c := &InvokeCommand{Command: "invoke", Method: method, Args: args}
	if selector != "" {
		c.Selector = &selector
	}
	if c.Args == nil {
		c.Args = []any{}
	}
	return c
}

func (c *InvokeCommand) CommandName() string { return c.Command }

// Response is an ordered sequence of commands. It is built per request and never stored.
type Response struct {
	commands []Command
}

// NewResponse creates an empty response.
func NewResponse() *Response {
	return &Response{}
}

// Add appends a command and returns the response for chaining.
func (r *Response) Add(c Command) *Response {
	r.commands = append(r.commands, c)
	return r
}

// Commands returns the commands in the order they will run.
func (r *Response) Commands() []Command {
	return r.commands
}

// MarshalJSON encodes the response as a JSON array of commands.
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.commands == nil {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.commands); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode writes the response as JSON without HTML-escaping the markup payloads.
func (r *Response) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// Write sends the response as JSON. Patch Responses are never cacheable.
func (r *Response) Write(w http.ResponseWriter) error {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
