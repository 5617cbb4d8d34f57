// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// listingLimit caps directory listings attached to diagnostics.
const listingLimit = 200

// junk entries ignored when deciding whether an archive has a single
// top-level directory.
func isJunkEntry(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(name, "__MACOSX") ||
		base == ".DS_Store" ||
		strings.HasSuffix(strings.ToLower(base), ".zip")
}

// Unpack validates that payload is a zip archive and extracts it into dir.
// Validation happens before any file is written: a payload that is not a
// zip returns MalformedResponseError, and an archive containing any entry
// that would resolve outside dir returns ErrPathTraversal without writing
// a single entry.
func Unpack(payload []byte, dir string) error {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return &MalformedResponseError{
			SavedTo: dir,
			Snippet: lenientSnippet(payload, snippetLimit),
		}
	}

	// First pass: reject the whole archive if any entry escapes dir.
	for _, f := range zr.File {
		if _, err := safeJoin(dir, f.Name); err != nil {
			return fmt.Errorf("entry %q: %w", f.Name, err)
		}
	}

	for _, f := range zr.File {
		dest, err := safeJoin(dir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dest, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", dest, err)
		}
		if err := writeEntry(f, dest); err != nil {
			return err
		}
	}

	return flattenSingleDir(dir)
}

// safeJoin resolves an archive entry name under dir and errors with
// ErrPathTraversal when the result would land outside dir.
func safeJoin(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) {
		return "", ErrPathTraversal
	}
	dest := filepath.Join(dir, cleaned)
	if dest != dir && !strings.HasPrefix(dest, dir+string(os.PathSeparator)) {
		return "", ErrPathTraversal
	}
	return dest, nil
}

func writeEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// flattenSingleDir hoists the contents of a lone top-level directory up
// into dir. Archives from the extraction service wrap everything in a
// directory named after the input file; downstream code expects the
// artifacts at the directory root. Junk entries (macOS resource forks,
// .DS_Store, the persisted raw zip) do not count against the check.
func flattenSingleDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	var lone string
	for _, e := range entries {
		if isJunkEntry(e.Name()) {
			continue
		}
		if !e.IsDir() {
			return nil
		}
		if lone != "" {
			return nil
		}
		lone = e.Name()
	}
	if lone == "" {
		return nil
	}

	src := filepath.Join(dir, lone)
	inner, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	for _, e := range inner {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dir, e.Name())
		if _, err := os.Lstat(to); err == nil {
			return fmt.Errorf("flattening %s would overwrite existing %s", src, to)
		}
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("moving %s: %w", from, err)
		}
	}
	return os.Remove(src)
}

// Normalize enforces the canonical result-directory contract on dir:
// layout.json exists (backfilled from a middle-json artifact when absent)
// and at least one *_content_list.json artifact is present.
func Normalize(dir, stem string) error {
	if err := ensureLayout(dir, stem); err != nil {
		return err
	}

	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "_content_list.json") {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if !found {
		return &MissingArtifactError{
			Artifact: "*_content_list.json",
			Dir:      dir,
			Listing:  listDir(dir, listingLimit),
		}
	}
	return nil
}

// ensureLayout guarantees a layout.json exists at the directory root. When
// absent it is backfilled by copying a middle-json artifact: the exact
// <stem>_middle.json is preferred; otherwise a unique *_middle.json
// candidate is accepted, multiple candidates are a ConfigurationError, and
// zero candidates leave the directory as-is.
func ensureLayout(dir, stem string) error {
	layoutPath := filepath.Join(dir, "layout.json")
	if _, err := os.Stat(layoutPath); err == nil {
		return nil
	}

	var candidates []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "_middle.json") {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s for middle json: %w", dir, err)
	}

	var source string
	switch {
	case len(candidates) == 0:
		return nil
	case len(candidates) == 1:
		source = candidates[0]
	default:
		preferred := stem + "_middle.json"
		for _, c := range candidates {
			if filepath.Base(c) == preferred {
				source = c
				break
			}
		}
		if source == "" {
			sort.Strings(candidates)
			return &ConfigurationError{
				Reason:     fmt.Sprintf("multiple middle-json candidates for layout backfill in %s", dir),
				Candidates: candidates,
			}
		}
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	if err := os.WriteFile(layoutPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", layoutPath, err)
	}
	return nil
}

// listDir returns up to limit relative paths under dir, sorted.
func listDir(dir string, limit int) []string {
	var listing []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		listing = append(listing, rel)
		return nil
	})
	sort.Strings(listing)
	if len(listing) > limit {
		listing = listing[:limit]
		listing = append(listing, "... (listing truncated) ...")
	}
	return listing
}

// lenientSnippet decodes the head of a payload for diagnostics, replacing
// invalid UTF-8 rather than failing.
func lenientSnippet(payload []byte, limit int) string {
	if len(payload) > limit {
		payload = payload[:limit]
	}
	if utf8.Valid(payload) {
		return string(payload)
	}
	return strings.ToValidUTF8(string(payload), "�")
}
