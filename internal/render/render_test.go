package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleTable() Table {
	return Table{
		Title:   "Owners",
		Headers: []string{"Owner name", "Filename"},
		Rows: [][]string{
			{"Alice", "notes.txt"},
			{"Bob", "b"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"tsv", FormatTSV, false},
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

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(&buf, FormatTable).Render(sampleTable()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := "Owners\n\n" +
		"Owner name  Filename\n" +
		"----------  ---------\n" +
		"Alice       notes.txt\n" +
		"Bob         b\n\n"
	if buf.String() != want {
		t.Errorf("table output mismatch\ngot:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Title: "Multiparent files", Headers: []string{"File name"}}
	if err := NewRenderer(&buf, "").Render(tbl); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "(none)") {
		t.Errorf("expected (none) marker, got %q", buf.String())
	}
}

func TestRenderTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(&buf, FormatTSV).Render(sampleTable()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := "Owner name\tFilename\nAlice\tnotes.txt\nBob\tb\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderJSONAndYAMLUseRecordKeys(t *testing.T) {
	var jbuf bytes.Buffer
	if err := NewRenderer(&jbuf, FormatJSON).Render(sampleTable()); err != nil {
		t.Fatalf("Render JSON failed: %v", err)
	}
	var fromJSON []map[string]string
	if err := json.Unmarshal(jbuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	var ybuf bytes.Buffer
	if err := NewRenderer(&ybuf, FormatYAML).Render(sampleTable()); err != nil {
		t.Fatalf("Render YAML failed: %v", err)
	}
	var fromYAML []map[string]string
	if err := yaml.Unmarshal(ybuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}

	for name, recs := range map[string][]map[string]string{"json": fromJSON, "yaml": fromYAML} {
		if len(recs) != 2 {
			t.Fatalf("%s: expected 2 records, got %d", name, len(recs))
		}
		if recs[0]["owner_name"] != "Alice" || recs[0]["filename"] != "notes.txt" {
			t.Errorf("%s: unexpected first record %v", name, recs[0])
		}
	}
}
