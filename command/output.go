package command

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommandResult is the outcome of a successful command
type CommandResult interface {
	GetOutput() string
}

// OutputFormatter collects the result or the error of a command
// and writes it once the command is done
type OutputFormatter interface {
	SetError(err error)
	SetCommandResult(result CommandResult)
	WriteOutput()
}

// renderer turns a result or an error into the text of one output mode
type renderer interface {
	result(res CommandResult) string
	err(err error) string
}

type outputter struct {
	renderer

	res    CommandResult
	failed error

	stdout io.Writer
	stderr io.Writer
}

// InitializeOutputter returns the formatter selected by the --json flag
func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	o := &outputter{
		renderer: textRenderer{},
		stdout:   cmd.OutOrStdout(),
		stderr:   cmd.ErrOrStderr(),
	}

	if flag := cmd.Flag(JSONOutputFlag); flag != nil && flag.Changed {
		o.renderer = jsonRenderer{}
	}

	return o
}

func (o *outputter) SetError(err error) {
	o.failed = err
}

func (o *outputter) SetCommandResult(result CommandResult) {
	o.res = result
}

// WriteOutput prints the error to stderr if one was set, the result to stdout otherwise
func (o *outputter) WriteOutput() {
	if o.failed != nil {
		_, _ = fmt.Fprintln(o.stderr, o.err(o.failed))

		return
	}

	_, _ = fmt.Fprintln(o.stdout, o.result(o.res))
}

type textRenderer struct{}

func (textRenderer) result(res CommandResult) string {
	if res == nil {
		return ""
	}

	return res.GetOutput()
}

func (textRenderer) err(err error) string {
	return err.Error()
}

type jsonRenderer struct{}

func (jsonRenderer) result(res CommandResult) string {
	return marshal(res)
}

func (jsonRenderer) err(err error) string {
	return marshal(map[string]string{"error": err.Error()})
}

func marshal(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}

	return string(raw)
}
