package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	// ExitOK means the command completed.
	ExitOK = 0

	// ExitFailure means the command failed (bad rule file, unreadable
	// input, runtime error).
	ExitFailure = 1

	// ExitConfig means the configuration or flags were invalid.
	ExitConfig = 2
)

// ConfigError reports invalid configuration or flag values. It maps to
// ExitConfig.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// ExitCode returns the process exit code for this error.
func (e *ConfigError) ExitCode() int {
	return ExitConfig
}

// CommandError reports a failed command execution. It maps to ExitFailure
// unless Code overrides it.
type CommandError struct {
	Command string
	Err     error

	// Code is the exit code; zero means ExitFailure.
	Code int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this error.
func (e *CommandError) ExitCode() int {
	if e.Code != 0 {
		return e.Code
	}
	return ExitFailure
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// exitCoder is satisfied by errors that carry their own exit code.
type exitCoder interface {
	ExitCode() int
}

// ExitCode maps an error to a process exit code: nil is ExitOK, errors
// carrying their own code keep it, anything else is ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return ExitFailure
}
