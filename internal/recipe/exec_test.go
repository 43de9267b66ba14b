package recipe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"testing"
	"time"
)

// Cancels the returned context after delay.
func cancelAfter(t *testing.T, delay time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	time.AfterFunc(delay, cancel)
	return ctx
}

func skipIfInterruptIgnored(t *testing.T) {
	t.Helper()
	if signal.Ignored(os.Interrupt) {
		t.Skip("SIGINT is ignored by this process and its children")
	}
}

func TestExecRunnerExitCode(t *testing.T) {
	err := ExecRunner{}.Run(context.Background(), Command{
		Step: "compile",
		Name: "/bin/sh",
		Args: []string{"-c", "exit 3"},
	})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 3 || exitErr.Step != "compile" {
		t.Fatalf("exit error = %+v", exitErr)
	}
}

func TestExecRunnerEnv(t *testing.T) {
	var out bytes.Buffer
	err := ExecRunner{}.Run(context.Background(), Command{
		Step:   "run",
		Name:   "/bin/sh",
		Args:   []string{"-c", `printf %s "$PROCUREMENT_DATA_DIR"`},
		Env:    []string{"PROCUREMENT_DATA_DIR=/srv/procurement"},
		Stdout: &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "/srv/procurement" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "go", Args: []string{"mod", "download"}}
	if got := c.String(); got != "go mod download" {
		t.Fatalf("String = %q", got)
	}
	if !strings.Contains((&ExitError{Step: "strip", Code: 1}).Error(), "strip") {
		t.Fatal("ExitError should name the step")
	}
}

func TestExecRunnerCleanExitAfterInterrupt(t *testing.T) {
	skipIfInterruptIgnored(t)

	err := ExecRunner{}.Run(cancelAfter(t, 300*time.Millisecond), Command{
		Step: "run",
		Name: "/bin/sh",
		Args: []string{"-c", "trap 'exit 0' INT; while :; do sleep 0.05; done"},
	})
	if err != nil {
		t.Fatalf("child exited 0 after SIGINT, got %v", err)
	}
}

func TestExecRunnerNonZeroExitAfterInterrupt(t *testing.T) {
	skipIfInterruptIgnored(t)

	err := ExecRunner{}.Run(cancelAfter(t, 300*time.Millisecond), Command{
		Step: "run",
		Name: "/bin/sh",
		Args: []string{"-c", "trap 'exit 4' INT; while :; do sleep 0.05; done"},
	})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 4 {
		t.Fatalf("err = %v, want exit status 4", err)
	}
}

func TestExecRunnerKilledByInterrupt(t *testing.T) {
	skipIfInterruptIgnored(t)

	err := ExecRunner{}.Run(cancelAfter(t, 300*time.Millisecond), Command{
		Step: "run",
		Name: "/bin/sh",
		Args: []string{"-c", "exec sleep 5"},
	})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 130 {
		t.Fatalf("code = %d, want 130", exitErr.Code)
	}
}

func TestExecRunnerSignalStatus(t *testing.T) {
	err := ExecRunner{}.Run(context.Background(), Command{
		Step: "test",
		Name: "/bin/sh",
		Args: []string{"-c", "kill -TERM $$"},
	})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 143 {
		t.Fatalf("code = %d, want 143 for SIGTERM", exitErr.Code)
	}
}
