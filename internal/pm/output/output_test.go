package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPrinter_Printf(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithOutput(&buf))

	p.Printf("Hello %s", "World")
	if !strings.Contains(buf.String(), "Hello World") {
		t.Errorf("Printf output = %q, want to contain 'Hello World'", buf.String())
	}
}

func TestPrinter_Printf_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithOutput(&buf), WithQuiet(true))

	p.Printf("Hello %s", "World")
	if buf.Len() != 0 {
		t.Errorf("Printf with quiet should produce no output, got %q", buf.String())
	}
}

func TestPrinter_Printf_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithOutput(&buf), WithJSON(true))

	p.Printf("Hello %s", "World")
	if buf.Len() != 0 {
		t.Errorf("Printf with JSON mode should produce no output, got %q", buf.String())
	}
}

func TestPrinter_Success(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithOutput(&buf), WithNoColor(true))

	p.Success("Done!")
	output := buf.String()
	if !strings.Contains(output, "Done!") {
		t.Errorf("Success output = %q, want to contain 'Done!'", output)
	}
}

func TestPrinter_Error(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithErrOutput(&buf), WithNoColor(true))

	p.Error("Something failed")
	output := buf.String()
	if !strings.Contains(output, "Something failed") {
		t.Errorf("Error output = %q, want to contain 'Something failed'", output)
	}
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithOutput(&buf))

	data := map[string]string{"key": "value"}
	if err := p.JSON(data); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	if result["key"] != "value" {
		t.Errorf("JSON output key = %q, want 'value'", result["key"])
	}
}

func TestPrinter_Summary(t *testing.T) {
	tests := []struct {
		name      string
		succeeded int
		total     int
		want      string
	}{
		{"all succeeded", 3, 3, "3/3 watermarked successfully"},
		{"some failed", 2, 3, "2/3 watermarked (1 failed)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := New(WithOutput(&buf), WithNoColor(true))
			p.Summary(tt.succeeded, tt.total)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Summary output = %q, want to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrinter_ImageLines(t *testing.T) {
	var out, errOut bytes.Buffer
	p := New(WithOutput(&out), WithErrOutput(&errOut), WithNoColor(true))

	p.ImageWritten("/in/a.jpg", "/out/a.jpeg", "2024-05-01")
	p.ImageFailed("/in/b.jpg", "invalid_logo", errors.New("logo missing"))

	if !strings.Contains(out.String(), "a.jpg") || !strings.Contains(out.String(), "/out/a.jpeg") {
		t.Errorf("ImageWritten output = %q", out.String())
	}
	if !strings.Contains(out.String(), "label: 2024-05-01") {
		t.Errorf("ImageWritten should print the label, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[invalid_logo]") {
		t.Errorf("ImageFailed output = %q, want code", errOut.String())
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWriter(&buf, []string{"Name", "Anchor"}, false)
	table.Append([]string{"classic", "bottom-right"})
	table.Append([]string{"studio", "top-left"})
	table.Render()

	output := buf.String()
	if !strings.Contains(output, "classic") {
		t.Errorf("Table output should contain 'classic', got %q", output)
	}
	if !strings.Contains(output, "bottom-right") {
		t.Errorf("Table output should contain 'bottom-right', got %q", output)
	}
	if lines := strings.Split(strings.TrimSpace(output), "\n"); len(lines) != 3 {
		t.Errorf("Table should render a header and 2 rows, got %d lines: %q", len(lines), output)
	}
}

func TestTable_Quiet(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWriter(&buf, []string{"Name", "Anchor"}, true)
	table.Append([]string{"classic", "bottom-right"})
	table.Render()

	if buf.Len() != 0 {
		t.Errorf("Table with quiet should produce no output, got %q", buf.String())
	}
}

func TestNewProgress(t *testing.T) {
	p := NewProgress(10, "Testing", ProgressWithQuiet(true))
	p.Describe("a.jpg")
	p.Increment()
	p.Finish()
	if p.Duration() < 0 {
		t.Error("Duration should be positive")
	}
}

func TestNewProgress_Output(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(2, "Watermarking", ProgressWithOutput(&buf))
	p.Increment()
	p.Increment()
	p.Finish()
	if !strings.Contains(buf.String(), "Watermarking") {
		t.Errorf("progress output = %q, want description", buf.String())
	}
}
