// Package far reads the FAR archive container used by The Sims 1.
//
// A FAR container is a 16-byte header, a data region of concatenated file
// payloads, and a trailing directory (the "manifest") listing each stored
// file's name, size, and offset. This package decodes the manifest and
// extracts payloads byte-exactly; it does not create or modify archives.
//
// # Quick Start
//
// Extract a container into a directory tree:
//
//	archive, err := far.Open("Sounds.far")
//	if err != nil {
//	    return err
//	}
//	defer archive.Close()
//	n, err := archive.Extract("./out")
//
// Or inspect the manifest first and extract selectively:
//
//	m, err := far.ReadManifest("Sounds.far")
//	if err != nil {
//	    return err
//	}
//	for _, e := range m.Entries {
//	    fmt.Println(e.Path(), e.Size)
//	}
//	n, err := far.Extract(m, "./out", "Sounds.far")
//
// # Random Access
//
// Archive implements fs.FS, fs.StatFS, fs.ReadFileFS, and fs.ReadDirFS,
// so stored files can be read in place without extracting:
//
//	content, err := archive.ReadFile("sounds/effects/click.wav")
//
// Stored names may use backslash separators; they are normalized to
// slashes for all lookups.
//
// # Errors
//
// Structural problems in a container (bad signature, truncated directory,
// payload ranges outside the data region) are reported as *FormatError,
// which wraps the ErrNotFAR and ErrTruncated sentinels where they apply.
// Plain I/O failures surface as wrapped *fs.PathError values.
package far
