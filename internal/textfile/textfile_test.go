package textfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFieldLookup(t *testing.T) {
	content := "Plan Title=Test Plan\nGeom File=g01\nFlow File=u01\n"
	doc := Parse([]byte(content))

	v, ok := doc.Field("Plan Title")
	if !ok || v != "Test Plan" {
		t.Errorf("Field(%q) = %q, %v, want %q, true", "Plan Title", v, ok, "Test Plan")
	}

	if _, ok := doc.Field("Missing Key"); ok {
		t.Error("Field() of a missing key should return ok=false")
	}
}

func TestBlankLineInsideTableDoesNotEndIt(t *testing.T) {
	// Two rows split by a blank line must both still belong to the
	// table. The declared count of 4 station/elevation pairs (8 values)
	// is more than the two rows hold, so the table runs until the next
	// header line.
	content := strings.Join([]string{
		"Station Elevation=4",
		"    1.00    2.00",
		"",
		"    3.00    4.00",
		"Mann Station Elev=0",
	}, "\n")
	doc := Parse([]byte(content))

	body, count, ok := doc.TableBody("Station Elevation")
	if !ok {
		t.Fatal("TableBody() did not find Station Elevation table")
	}
	if count != 4 {
		t.Errorf("TableBody() count = %d, want 4", count)
	}
	if len(body) != 3 {
		t.Errorf("TableBody() returned %d lines, want 3 (two data rows plus the blank line)", len(body))
	}
}

func TestTableEndsAtNextHeaderEvenWithoutFullCount(t *testing.T) {
	// A short/truncated table body still yields control back to the
	// scanner once a new header line appears.
	content := strings.Join([]string{
		"Flow Hydrograph=10",
		"    1.00    2.00",
		"Plan Title=After",
	}, "\n")
	doc := Parse([]byte(content))

	_, ok := doc.Field("Plan Title")
	if !ok {
		t.Fatal("scanner failed to recognize the header line following a short table body")
	}
}

func TestSetFieldUpdatesSyncGroup(t *testing.T) {
	content := "Computation Interval=1MIN\nOutput Interval=1HOUR\n"
	doc := Parse([]byte(content))
	doc.LinkSyncGroup("Computation Interval", "Output Interval")

	if err := doc.SetField("Computation Interval", "5MIN"); err != nil {
		t.Fatalf("SetField() error: %v", err)
	}

	v, _ := doc.Field("Output Interval")
	if v != "5MIN" {
		t.Errorf("linked field not updated: Output Interval = %q, want %q", v, "5MIN")
	}
}

func TestSetFieldUnknownKeyErrors(t *testing.T) {
	doc := Parse([]byte("Plan Title=Test\n"))
	if err := doc.SetField("No Such Field", "x"); err == nil {
		t.Error("SetField() of an absent key should error")
	}
}

func TestSetTableBodyShiftsFollowingFields(t *testing.T) {
	content := strings.Join([]string{
		"Flow Hydrograph=2",
		"  10.00",
		"  20.00",
		"Plan Title=After",
	}, "\n")
	doc := Parse([]byte(content))

	if err := doc.SetTableBody("Flow Hydrograph", []string{"  10.00", "  20.00", "  30.00"}, 3); err != nil {
		t.Fatalf("SetTableBody() error: %v", err)
	}

	v, ok := doc.Field("Plan Title")
	if !ok || v != "After" {
		t.Errorf("Field(Plan Title) after SetTableBody = %q, %v, want %q, true", v, ok, "After")
	}

	_, count, ok := doc.TableBody("Flow Hydrograph")
	if !ok || count != 3 {
		t.Errorf("TableBody() count after SetTableBody = %d, %v, want 3, true", count, ok)
	}
}

func TestRenderPreservesCRLF(t *testing.T) {
	content := "Plan Title=Test\r\nGeom File=g01\r\n"
	doc := Parse([]byte(content))
	rendered := doc.Render()
	if !strings.Contains(string(rendered), "\r\n") {
		t.Error("Render() did not preserve CRLF line endings")
	}
}

func TestReadWriteAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.p01")
	if err := os.WriteFile(path, []byte("Plan Title=Original\n"), 0644); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument() error: %v", err)
	}
	if err := doc.SetField("Plan Title", "Edited"); err != nil {
		t.Fatalf("SetField() error: %v", err)
	}
	if err := WriteAtomic(path, doc); err != nil {
		t.Fatalf("WriteAtomic() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file failed: %v", err)
	}
	if !strings.Contains(string(got), "Plan Title=Edited") {
		t.Errorf("written file = %q, want it to contain %q", got, "Plan Title=Edited")
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("reading backup failed: %v", err)
	}
	if !strings.Contains(string(backup), "Plan Title=Original") {
		t.Errorf("backup content = %q, want it to contain the pre-edit value", backup)
	}
}

func TestWriteAtomicOfNewFileSkipsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.p01")
	doc := Parse([]byte("Plan Title=Brand New\n"))

	if err := WriteAtomic(path, doc); err != nil {
		t.Fatalf("WriteAtomic() error: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err == nil {
		t.Error("WriteAtomic() should not create a backup for a file that did not previously exist")
	}
}
