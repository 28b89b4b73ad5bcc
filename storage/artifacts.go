package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"phone-scrubber/models"
	"phone-scrubber/utils"
)

// DateLayout stamps output file names.
const DateLayout = "20060102"

// Folders names the destinations for run outputs.
type Folders struct {
	Removed  string
	Scrubbed string
}

// Artifact is one output table bound for a destination folder.
type Artifact struct {
	Folder string
	Name   string
	Table  *models.Table
}

// BaseName strips directories and a trailing ".csv" from a file name.
func BaseName(filename string) string {
	base := filepath.Base(filename)
	if strings.HasSuffix(strings.ToLower(base), ".csv") {
		base = base[:len(base)-len(".csv")]
	}
	return base
}

// BuildArtifacts lays out the outputs of a run:
//
//	Updated_<list>_<date>.csv          removed folder
//	Removed_From_<list>_<date>.csv     removed folder, when non-empty
//	Scrubbed_<log>_<date>.csv          scrubbed folder
//	Removed_Records_<log>_<date>.csv   removed folder, when non-empty
//
// Logs that failed before a table existed produce nothing. Clashing names
// get a numeric suffix.
func BuildArtifacts(listName string, r *models.RunResult, date time.Time, folders Folders) []Artifact {
	stamp := date.Format(DateLayout)
	names := utils.NewStringSet()
	unique := func(prefix, base string) string {
		name := fmt.Sprintf("%s_%s_%s.csv", prefix, base, stamp)
		for n := 2; !names.Add(name); n++ {
			name = fmt.Sprintf("%s_%s_%s_%d.csv", prefix, base, stamp, n)
		}
		return name
	}

	listBase := BaseName(listName)
	artifacts := []Artifact{{
		Folder: folders.Removed,
		Name:   unique("Updated", listBase),
		Table:  r.UpdatedList,
	}}
	if !r.RemovedFromList.Empty() {
		artifacts = append(artifacts, Artifact{
			Folder: folders.Removed,
			Name:   unique("Removed_From", listBase),
			Table:  r.RemovedFromList,
		})
	}

	for _, l := range r.Logs {
		if l.Scrubbed == nil || len(l.Scrubbed.Columns) == 0 {
			continue
		}
		base := BaseName(l.Name)
		artifacts = append(artifacts, Artifact{
			Folder: folders.Scrubbed,
			Name:   unique("Scrubbed", base),
			Table:  l.Scrubbed,
		})
		if !l.Removed.Empty() {
			artifacts = append(artifacts, Artifact{
				Folder: folders.Removed,
				Name:   unique("Removed_Records", base),
				Table:  l.Removed,
			})
		}
	}
	return artifacts
}

// ZipName is the bundle file name for a run date.
func ZipName(date time.Time) string {
	return "all_processed_files_" + date.Format(DateLayout) + ".zip"
}
