package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/reportkit/report"
)

func TestReadInputFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"in.json": `{"profile":{"name":"Ana Souza","interests":["Design"]},"disc":{"D":70,"I":20},"narrative":"hello"}`,
		"in.yaml": "profile:\n  name: Ana Souza\n  interests: [Design]\ndisc:\n  D: 70\n  I: 20\nnarrative: hello\n",
	}
	want := report.Input{
		Profile:   report.Profile{Name: "Ana Souza", Interests: []string{"Design"}},
		DISC:      report.ResultSet{"D": 70, "I": 20},
		Narrative: "hello",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := readInput(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestReadInputRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readInput(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := writeOutput(path, []byte("%PDF-")); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "%PDF-" {
		t.Fatalf("read back %q, %v", got, err)
	}
}
