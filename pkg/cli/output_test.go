package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

var testReport = Report{
	{Key: "config", Value: "config.yaml"},
	{Key: "listen_address", Value: "0.0.0.0:3000"},
	{Key: "publishing", Value: false},
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, testReport); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "config:          config.yaml\n" +
		"listen_address:  0.0.0.0:3000\n" +
		"publishing:      false\n"
	if buf.String() != want {
		t.Errorf("FormatTo() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestTextFormatter_NonReport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatTo(&buf, "dev"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "dev\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter_KeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).FormatTo(&buf, testReport); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := `{"config":"config.yaml","listen_address":"0.0.0.0:3000","publishing":false}`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Errorf("FormatTo() = %s, want %s", got, want)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
