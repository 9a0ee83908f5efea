// Package textfile implements the generic line-oriented reader/writer
// that underlies every HEC-RAS text format: UTF-8, LF-or-CRLF
// preserving, Key=Value header lines interleaved with fixed-width
// numeric tables (§3.3, §3.4, §6.2).
//
// Its scanner is the direct answer to the §4.2 "state-machine parsing
// invariant": blank-line skipping and header-line recognition are two
// independent checks. Combining them with `||` was the documented
// pitfall (a blank line inside a table would be mistaken for the end
// of the table, and the state machine would then misread the
// following data row as a new header). Document implements the fix by
// tracking "am I inside a table" as explicit scanner state that a
// blank line never clears on its own.
package textfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jra3/hecras-orchestrator/internal/fixedwidth"
	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// Document is an in-memory, line-preserving view of a key=value text
// file with embedded fixed-width tables. Editing a Document never
// touches bytes outside the fields/tables that were explicitly
// modified.
type Document struct {
	lines   []string
	newline string // "\n" or "\r\n", detected from the source and preserved on write
	// fieldIndex maps a header key (e.g. "Plan Title") to the line
	// index holding "Key=Value".
	fieldIndex map[string][]int
	// syncGroup maps a header key to the group of keys that must be
	// kept in sync with it (the §9 Open Question: separate-lines vs.
	// combined-line forms of the same parameter both get updated).
	syncGroup map[string][]string
	// tables maps a table keyword (e.g. "Flow Hydrograph") to its
	// location: the header line index and the half-open range of
	// lines holding its fixed-width body.
	tables map[string]tableLoc
}

type tableLoc struct {
	headerLine int
	bodyStart  int
	bodyEnd    int // exclusive
	count      int // the declared header count, e.g. pair count for station/elevation tables
}

// Parse reads raw file content into a Document.
func Parse(content []byte) *Document {
	newline := "\n"
	if strings.Contains(string(content), "\r\n") {
		newline = "\r\n"
	}
	normalized := strings.ReplaceAll(string(content), "\r\n", "\n")
	// Preserve a final trailing blank line if present, but split does
	// not itself need special-casing: Document.Render re-adds it.
	lines := strings.Split(normalized, "\n")

	doc := &Document{
		lines:      lines,
		newline:    newline,
		fieldIndex: make(map[string][]int),
		syncGroup:  make(map[string][]string),
		tables:     make(map[string]tableLoc),
	}
	doc.scan()
	return doc
}

// lineKind classifies one line for the scanner. Blank-line detection
// and header-line recognition are deliberately separate predicates —
// never combined into one "skip" check — per the §4.2 invariant.
type lineKind int

const (
	kindBlank lineKind = iota
	kindHeader
	kindData
)

func classify(line string) lineKind {
	if strings.TrimSpace(line) == "" {
		return kindBlank
	}
	if strings.Contains(line, "=") && isHeaderShaped(line) {
		return kindHeader
	}
	return kindData
}

// isHeaderShaped reports whether line looks like "Key=Value" rather
// than a fixed-width numeric data row. A data row built from 8-char
// numeric columns will rarely contain "=" at all; when it does (it
// never should, since tables are purely numeric) and passes this
// check, it is classified as a header, and scan() ends any open table
// there. This function does not consult scan()'s table state on
// purpose (state belongs to the scanner, not the classifier).
func isHeaderShaped(line string) bool {
	idx := strings.Index(line, "=")
	if idx <= 0 {
		return false
	}
	key := strings.TrimSpace(line[:idx])
	return key != "" && !strings.HasPrefix(line, " ")
}

// scan walks the document once, tracking "inside a table" as explicit
// state that survives blank lines within the same table section. This
// is the mechanism the spec's invariant demands: a blank line inside a
// table body does not end the table; only reaching the declared
// row/value count, or encountering a new header line, does.
func (d *Document) scan() {
	var currentTable string
	var tableRemaining int
	var bodyStart int

	flushTable := func(endLine int) {
		if currentTable != "" {
			loc := d.tables[currentTable]
			loc.bodyEnd = endLine
			d.tables[currentTable] = loc
		}
		currentTable = ""
		tableRemaining = 0
	}

	for i, line := range d.lines {
		kind := classify(line)

		if currentTable != "" {
			// Two independent checks, never OR'd together: a blank
			// line never ends the table on its own, and reaching a
			// new header line ends the table regardless of whether
			// the declared count was fully consumed.
			if kind == kindBlank {
				// Blank line inside a table: state is preserved.
				continue
			}
			if kind != kindHeader && tableRemaining > 0 {
				// Still inside the table body; consume toward the count.
				consumed := countValuesOnLine(line)
				if consumed > tableRemaining {
					consumed = tableRemaining
				}
				tableRemaining -= consumed
				if tableRemaining <= 0 {
					flushTable(i + 1)
				}
				continue
			}
			flushTable(i)
		}

		switch kind {
		case kindHeader:
			key, value := splitHeader(line)
			d.fieldIndex[key] = append(d.fieldIndex[key], i)
			if count, ok := parseTableHeader(key, value); ok {
				currentTable = key
				bodyStart = i + 1
				tableRemaining = fixedwidth.InterpretCount(key, count)
				d.tables[key] = tableLoc{headerLine: i, bodyStart: bodyStart, count: count}
				if tableRemaining == 0 {
					flushTable(i + 1)
				}
			}
		case kindBlank, kindData:
			// Outside any table: ignored (section separators, free text).
		}
	}
	if currentTable != "" {
		flushTable(len(d.lines))
	}
}

func countValuesOnLine(line string) int {
	// A data row is W-char columns; §4.2 does not require a fixed W
	// at scan time, so count non-blank DefaultWidth-wide fields.
	const w = 8
	n := 0
	for i := 0; i < len(line); i += w {
		end := i + w
		if end > len(line) {
			end = len(line)
		}
		if strings.TrimSpace(line[i:end]) != "" {
			n++
		}
	}
	if n == 0 {
		n = 1 // malformed/short row still advances the scanner
	}
	return n
}

func splitHeader(line string) (key, value string) {
	idx := strings.Index(line, "=")
	return strings.TrimSpace(line[:idx]), line[idx+1:]
}

// tableKeywords lists the header keys that introduce a fixed-width
// table body (§3.4): "<TableName>=<count>".
var tableKeywords = map[string]bool{
	"Flow Hydrograph":        true,
	"Stage Hydrograph":       true,
	"Gate Opening":           true,
	"Lateral Inflow Hydrograph": true,
	"Storage Area Hydrograph": true,
	"Station Elevation":      true,
	"Mann Station Elev":      true,
}

func parseTableHeader(key, value string) (int, bool) {
	if !tableKeywords[key] {
		return 0, false
	}
	value = strings.TrimSpace(value)
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Field returns the value of the first occurrence of key, and whether
// it was found.
func (d *Document) Field(key string) (string, bool) {
	idxs, ok := d.fieldIndex[key]
	if !ok || len(idxs) == 0 {
		return "", false
	}
	_, value := splitHeader(d.lines[idxs[0]])
	return value, true
}

// SetField rewrites every occurrence of key (and every key in its sync
// group, per the §9 Open Question resolution) to value, leaving all
// other bytes untouched. It is a no-op error if key is not present.
func (d *Document) SetField(key, value string) error {
	keys := append([]string{key}, d.syncGroup[key]...)
	found := false
	for _, k := range keys {
		idxs, ok := d.fieldIndex[k]
		if !ok {
			continue
		}
		found = true
		for _, idx := range idxs {
			d.lines[idx] = fmt.Sprintf("%s=%s", k, value)
		}
	}
	if !found {
		return fmt.Errorf("field %q not present in document", key)
	}
	return nil
}

// SetOrAddField rewrites key's value if present, or appends a new
// "Key=Value" line at the end of the header region (before the first
// table, if any) when key is absent. Used by Clone/SetBinding, which
// may need to introduce a field (e.g. "Flow File=") that a plan file
// omitted for the opposite binding.
func (d *Document) SetOrAddField(key, value string) {
	if err := d.SetField(key, value); err == nil {
		return
	}
	insertAt := len(d.lines)
	for _, loc := range d.tables {
		if loc.headerLine < insertAt {
			insertAt = loc.headerLine
		}
	}
	line := fmt.Sprintf("%s=%s", key, value)
	d.lines = append(d.lines[:insertAt], append([]string{line}, d.lines[insertAt:]...)...)
	d.fieldIndex[key] = append(d.fieldIndex[key], insertAt)
	shiftAfter(d.fieldIndex, insertAt+1, 1)
	for k, loc := range d.tables {
		if loc.headerLine >= insertAt {
			loc.headerLine++
			loc.bodyStart++
			loc.bodyEnd++
			d.tables[k] = loc
		}
	}
}

// AppendLine adds line to the end of the document, after any existing
// content. Used for manifest registration, where a key may legally
// repeat once per recognized file.
func (d *Document) AppendLine(line string) {
	d.lines = append(d.lines, line)
	if idx := strings.Index(line, "="); idx > 0 && isHeaderShaped(line) {
		key := strings.TrimSpace(line[:idx])
		d.fieldIndex[key] = append(d.fieldIndex[key], len(d.lines)-1)
	}
}

// RemoveField deletes every occurrence of key, if present.
func (d *Document) RemoveField(key string) {
	idxs, ok := d.fieldIndex[key]
	if !ok {
		return
	}
	// Remove from the back so earlier indices stay valid while we splice.
	for i := len(idxs) - 1; i >= 0; i-- {
		idx := idxs[i]
		d.lines = append(d.lines[:idx], d.lines[idx+1:]...)
		shiftAfter(d.fieldIndex, idx+1, -1)
		for k, loc := range d.tables {
			if loc.headerLine >= idx {
				loc.headerLine--
				loc.bodyStart--
				loc.bodyEnd--
				d.tables[k] = loc
			}
		}
	}
	delete(d.fieldIndex, key)
}

// LinkSyncGroup declares that keys must always be written together
// (the separate-lines and combined-line forms of one parameter).
func (d *Document) LinkSyncGroup(keys ...string) {
	for _, k := range keys {
		var others []string
		for _, o := range keys {
			if o != k {
				others = append(others, o)
			}
		}
		d.syncGroup[k] = append(d.syncGroup[k], others...)
	}
}

// TableBody returns the raw lines of table keyword's body and its
// declared count.
func (d *Document) TableBody(keyword string) ([]string, int, bool) {
	loc, ok := d.tables[keyword]
	if !ok {
		return nil, 0, false
	}
	return append([]string(nil), d.lines[loc.bodyStart:loc.bodyEnd]...), loc.count, true
}

// SetTableBody replaces a table's body with newLines and rewrites its
// header's count to newCount, per §4.2 SetTable.
func (d *Document) SetTableBody(keyword string, newLines []string, newCount int) error {
	loc, ok := d.tables[keyword]
	if !ok {
		return fmt.Errorf("table %q not present in document", keyword)
	}

	d.lines[loc.headerLine] = fmt.Sprintf("%s=%d", keyword, newCount)

	head := append([]string(nil), d.lines[:loc.bodyStart]...)
	tail := append([]string(nil), d.lines[loc.bodyEnd:]...)
	d.lines = append(head, append(append([]string(nil), newLines...), tail...)...)

	delta := len(newLines) - (loc.bodyEnd - loc.bodyStart)
	loc.bodyEnd += delta
	loc.count = newCount
	d.tables[keyword] = loc

	// Shift every index recorded after this table by delta.
	shiftAfter(d.fieldIndex, loc.bodyStart, delta)
	for k, l := range d.tables {
		if l.headerLine > loc.headerLine {
			l.headerLine += delta
			l.bodyStart += delta
			l.bodyEnd += delta
			d.tables[k] = l
		}
	}
	return nil
}

func shiftAfter(fieldIndex map[string][]int, after, delta int) {
	if delta == 0 {
		return
	}
	for k, idxs := range fieldIndex {
		shifted := make([]int, len(idxs))
		for i, idx := range idxs {
			if idx >= after {
				shifted[i] = idx + delta
			} else {
				shifted[i] = idx
			}
		}
		fieldIndex[k] = shifted
	}
}

// Render combines the document's lines back into file content,
// preserving the detected newline style.
func (d *Document) Render() []byte {
	return []byte(strings.Join(d.lines, d.newline))
}

// ReadDocument loads path and parses it into a Document.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, herr.Wrap(herr.IoError, "read text file", err).WithPath(path)
	}
	return Parse(data), nil
}

// WriteAtomic persists doc back to path using the shared backup
// protocol every mutating caller in internal/planregistry relies on:
// path is first copied to path+".bak" (fixedwidth.CreateBackup), then
// the new content is written to a temp file in the same directory and
// renamed over path. A crash between the write and the rename leaves
// either the original file or nothing in path's place — never a
// half-written one — and the .bak always holds the pre-edit content.
func WriteAtomic(path string, doc *Document) error {
	if _, err := os.Stat(path); err == nil {
		if err := fixedwidth.CreateBackup(path); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc.Render(), 0644); err != nil {
		return herr.Wrap(herr.IoError, "write temp file", err).WithPath(tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return herr.Wrap(herr.IoError, "rename temp file into place", err).WithPath(path)
	}
	return nil
}
