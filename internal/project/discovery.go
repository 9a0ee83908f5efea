package project

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jra3/hecras-orchestrator/internal/herr"
)

// manifestTitlePrefix is the line a genuine project manifest begins
// with, distinguishing it from a same-extension GIS projection file
// (§4.1 manifest discovery step 2).
const manifestTitlePrefix = "Proj Title="

// discoverManifest scans folder non-recursively for *.prj files and
// returns the one whose first line begins with manifestTitlePrefix
// (§4.1 algorithm steps 1–2).
func discoverManifest(folder string) (manifestPath, name string, err error) {
	entries, readErr := os.ReadDir(folder)
	if readErr != nil {
		return "", "", herr.Wrap(herr.ProjectNotFound, "cannot read project folder", readErr).WithPath(folder)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".prj") {
			candidates = append(candidates, filepath.Join(folder, entry.Name()))
		}
	}

	var manifests []string
	for _, candidate := range candidates {
		if isManifest(candidate) {
			manifests = append(manifests, candidate)
		}
	}

	switch len(manifests) {
	case 0:
		return "", "", herr.New(herr.ProjectNotFound, "no *.prj manifest found in folder").WithPath(folder)
	case 1:
		base := filepath.Base(manifests[0])
		return manifests[0], strings.TrimSuffix(base, filepath.Ext(base)), nil
	default:
		return "", "", herr.New(herr.AmbiguousProject, "multiple candidate manifests found: "+strings.Join(manifests, ", ")).WithPath(folder)
	}
}

func isManifest(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false
	}
	return strings.HasPrefix(scanner.Text(), manifestTitlePrefix)
}

// siblingFileSet is the result of enumerating a project folder's
// sibling files by extension pattern (§4.1 algorithm step 3).
type siblingFileSet struct {
	plans            []string
	geometries       []string
	flows            []string
	unsteadies       []string
	planResults      map[string]string // plan number -> .pNN.hdf path
	geometryArchives map[string]string // geometry number -> .gNN.hdf path
}

var (
	planPattern            = regexp.MustCompile(`\.p(\d{2})$`)
	geometryPattern         = regexp.MustCompile(`\.g(\d{2})$`)
	flowPattern             = regexp.MustCompile(`\.f(\d{2})$`)
	unsteadyPattern         = regexp.MustCompile(`\.u(\d{2})$`)
	planResultPattern       = regexp.MustCompile(`\.p(\d{2})\.hdf$`)
	geometryArchivePattern  = regexp.MustCompile(`\.g(\d{2})\.hdf$`)
)

// enumerateSiblings lists every sibling file matching the patterns in
// §4.1 step 3, rooted at name within folder.
func enumerateSiblings(folder, name string) (siblingFileSet, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return siblingFileSet{}, herr.Wrap(herr.IoError, "cannot read project folder", err).WithPath(folder)
	}

	set := siblingFileSet{
		planResults:      make(map[string]string),
		geometryArchives: make(map[string]string),
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fname := entry.Name()
		if !strings.HasPrefix(fname, name+".") {
			continue
		}
		full := filepath.Join(folder, fname)

		switch {
		case planResultPattern.MatchString(fname):
			set.planResults[planResultPattern.FindStringSubmatch(fname)[1]] = full
		case geometryArchivePattern.MatchString(fname):
			set.geometryArchives[geometryArchivePattern.FindStringSubmatch(fname)[1]] = full
		case planPattern.MatchString(fname):
			set.plans = append(set.plans, full)
		case geometryPattern.MatchString(fname):
			set.geometries = append(set.geometries, full)
		case flowPattern.MatchString(fname):
			set.flows = append(set.flows, full)
		case unsteadyPattern.MatchString(fname):
			set.unsteadies = append(set.unsteadies, full)
		}
	}

	sort.Strings(set.plans)
	sort.Strings(set.geometries)
	sort.Strings(set.flows)
	sort.Strings(set.unsteadies)
	return set, nil
}

func planNumberFromPath(path string) string {
	m := planPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

func geometryNumberFromPath(path string) string {
	m := geometryPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

func flowNumberFromPath(path string) string {
	m := flowPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

func unsteadyNumberFromPath(path string) string {
	m := unsteadyPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

// NextAvailableNumber returns the lowest unused two-digit number
// ("01".."99") given the set of numbers already in use. Used by
// internal/planregistry's Clone (§4.2).
func NextAvailableNumber(used map[string]bool) (string, error) {
	for i := 1; i <= 99; i++ {
		n := fmt.Sprintf("%02d", i)
		if !used[n] {
			return n, nil
		}
	}
	return "", herr.New(herr.FormatViolation, "no available two-digit number between 01 and 99")
}
