package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"sessionprep/internal/logging"
)

func TestConsoleHandlerFoldsComponentIntoPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logging.WithComponent(logger, "organizer").Info("row processed",
		logging.Int("row", 3),
		logging.String("camera", "cam01"),
	)

	line := buf.String()
	if !strings.Contains(line, "organizer: row processed") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "row=3") || !strings.Contains(line, "camera=cam01") {
		t.Fatalf("expected attrs in output, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as a key=value pair: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("no usable candidates", logging.String("folder", "cam 01"))
	if !strings.Contains(buf.String(), `folder="cam 01"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn should pass: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", logging.Int("row", 1))
	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"row":1`) {
		t.Fatalf("unexpected json output: %q", out)
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
