package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecuteEcho(t *testing.T) {
	executor := NewExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "echo",
		Arguments: []string{"hello"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success, got error: %s", result.Error)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Stdout, "hello") {
		t.Errorf("expected stdout to contain 'hello', got %q", result.Stdout)
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	executor := NewExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// Non-zero exit is a successful execution with a non-zero code
	if !result.Success {
		t.Errorf("expected success for non-zero exit, got error: %s", result.Error)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
}

func TestExecuteTimeout(t *testing.T) {
	executor := NewExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "sleep",
		Arguments: []string{"5"},
		Timeout:   100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Killed {
		t.Error("expected command to be killed")
	}
	if !strings.Contains(result.KillReason, "timeout") {
		t.Errorf("expected timeout kill reason, got %q", result.KillReason)
	}
	if result.Duration >= 5*time.Second {
		t.Errorf("command ran to completion despite timeout: %s", result.Duration)
	}
}

func TestExecuteMissingBinary(t *testing.T) {
	executor := NewExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary: "definitely-not-a-real-binary-12345",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Success {
		t.Error("expected infrastructure failure for missing binary")
	}
	if result.Error == "" {
		t.Error("expected error message for missing binary")
	}
}

func TestExecuteEmptyBinary(t *testing.T) {
	executor := NewExecutor()

	if _, err := executor.Execute(context.Background(), Command{}); err == nil {
		t.Error("expected error for empty binary")
	}
}

func TestExecuteStdin(t *testing.T) {
	executor := NewExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary: "cat",
		Stdin:  "piped input",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Stdout != "piped input" {
		t.Errorf("expected stdin echoed back, got %q", result.Stdout)
	}
}

func TestExecuteEnvironment(t *testing.T) {
	executor := NewExecutor()

	result, err := executor.Execute(context.Background(), Command{
		Binary:      "sh",
		Arguments:   []string{"-c", "echo $VALSKA_TEST_VAR"},
		Environment: []string{"VALSKA_TEST_VAR=wired"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !strings.Contains(result.Stdout, "wired") {
		t.Errorf("expected env var in output, got %q", result.Stdout)
	}
}

func TestExecuteOutputTruncation(t *testing.T) {
	config := DefaultExecutorConfig()
	config.MaxOutputBytes = 16
	executor := NewExecutorWithConfig(config)

	result, err := executor.Execute(context.Background(), Command{
		Binary:    "echo",
		Arguments: []string{strings.Repeat("x", 100)},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Truncated {
		t.Error("expected output to be truncated")
	}
	if len(result.Stdout) > 16 {
		t.Errorf("expected at most 16 bytes of stdout, got %d", len(result.Stdout))
	}
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, max: 10}

	n, err := lw.Write([]byte("12345"))
	if err != nil || n != 5 {
		t.Fatalf("first write: n=%d err=%v", n, err)
	}

	// Crosses the limit: reports full length, stores the remainder
	n, err = lw.Write([]byte("6789012345"))
	if err != nil || n != 10 {
		t.Fatalf("second write: n=%d err=%v", n, err)
	}

	if buf.String() != "1234567890" {
		t.Errorf("expected 10 bytes stored, got %q", buf.String())
	}
	if !lw.truncated {
		t.Error("expected truncated flag")
	}
}
