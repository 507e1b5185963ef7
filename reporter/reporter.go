// Package reporter collects run artifacts (raw pages, produced fragments, logs) into a single debug archive.
package reporter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Report accumulates information necessary to prepare debug report.
type Report struct {
	mu    sync.Mutex
	paths map[string]string
	blobs map[string][]byte
	file  *os.File
}

// NewReporter creates initialized empty reporter.
func NewReporter() (*Report, error) {

	r := &Report{paths: make(map[string]string), blobs: make(map[string][]byte)}

	if f, err := os.Create("imabi-report.zip"); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", "imabi-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// Close finalizes debug report.
func (r *Report) Close() error {

	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	return r.finalize()
}

// Name returns name of underlying file.
func (r *Report) Name() string {

	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store saves path to file or directory to be put in the final archive later.
func (r *Report) Store(name, path string) {

	if r == nil {
		// Ignore uninitialized cases to avoid checking in many places. This means no report has been requested.
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, exists := r.paths[name]; exists && old != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old, path))
	}
	if p, err := filepath.Abs(path); err == nil {
		r.paths[name] = p
	} else {
		r.paths[name] = path
	}
}

// StoreData saves in-memory artifact (fetched page, produced fragment) under given archive name.
func (r *Report) StoreData(name string, data []byte) {

	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[name] = append([]byte(nil), data...)
}

func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	t := time.Now()

	names, manifest := r.prepareManifest()
	if err := saveFile(arc, "MANIFEST", t, manifest); err != nil {
		return err
	}

	// in the same order as in manifest
	for _, name := range names {
		if data, ok := r.blobs[name]; ok {
			if err := saveFile(arc, name, t, bytes.NewReader(data)); err != nil {
				return err
			}
			continue
		}
		// ignoring absent files
		path := r.paths[name]
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		switch {
		case info.Mode().IsRegular():
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			if err := saveFile(arc, name, info.ModTime(), f); err != nil {
				f.Close()
				return err
			}
			f.Close()
		case info.Mode().IsDir():
			if err := saveDir(arc, name, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Report) prepareManifest() ([]string, *bytes.Buffer) {

	buf := new(bytes.Buffer)

	keys := make([]string, 0, len(r.paths)+len(r.blobs))
	for k := range r.paths {
		keys = append(keys, k)
	}
	for k := range r.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if p, ok := r.paths[k]; ok {
			fmt.Fprintf(buf, "%s\t%s\n", k, p)
		} else {
			fmt.Fprintf(buf, "%s\t<memory>\n", k)
		}
	}
	return keys, buf
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {

	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func saveDir(dst *zip.Writer, name, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(filepath.Join(name, rel))

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		return saveFile(dst, rel, info.ModTime(), f)
	})
}
