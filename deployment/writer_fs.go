// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deployment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/securevm"
)

// PlanWriter writes a Plan to a target location.
type PlanWriter interface {
	// Write exports the plan to outDir. Each planned resource is written as a separate JSON
	// file named after its step, its name and a type-specific suffix, so that a directory
	// listing shows the order in which the resources are created.
	Write(ctx context.Context, p *securevm.Plan, outDir string) error
}

var _ PlanWriter = (*FSWriter)(nil)

// FSWriter writes a Plan to the local filesystem.
type FSWriter struct {
	escapeHTML bool
}

// FSWriterOption configures an FSWriter.
type FSWriterOption func(*FSWriter)

// WithEscapeHTML makes the writer escape <, > and & in JSON strings.
func WithEscapeHTML(v bool) FSWriterOption {
	return func(w *FSWriter) { w.escapeHTML = v }
}

// NewFSWriter creates a new filesystem writer.
func NewFSWriter(opts ...FSWriterOption) *FSWriter {
	w := &FSWriter{}
	for _, o := range opts {
		o(w)
	}

	return w
}

// IndexFileName is the file holding the deployment ID and the list of resource files.
const IndexFileName = "plan.json"

const (
	dirPerm          = 0o755
	filePerm         = 0o644
	controlCharLimit = 0x20
)

type planIndex struct {
	DeploymentID string   `json:"deployment_id"`
	Files        []string `json:"files"`
}

// Write implements PlanWriter.
func (w *FSWriter) Write(ctx context.Context, p *securevm.Plan, outDir string) error {
	if p == nil {
		return errors.New("fswriter.write: plan is nil")
	}

	if strings.TrimSpace(outDir) == "" {
		return errors.New("fswriter.write: outDir is empty")
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return fmt.Errorf("fswriter.write: creating outDir: %w", err)
	}

	idx := planIndex{DeploymentID: p.DeploymentID, Files: make([]string, 0, len(p.Resources))}

	for _, r := range p.Resources {
		if err := ctxErr(ctx); err != nil {
			return err
		}

		doc, err := r.Document()
		if err != nil {
			return fmt.Errorf("fswriter.write: %w", err)
		}

		name := FileName(r)
		if err := w.writeJSONFile(filepath.Join(outDir, name), doc); err != nil {
			return fmt.Errorf("fswriter.write: writing %s %q: %w", r.Type, r.Name, err)
		}

		idx.Files = append(idx.Files, name)
	}

	if err := w.writeJSONFile(filepath.Join(outDir, IndexFileName), idx); err != nil {
		return fmt.Errorf("fswriter.write: writing index: %w", err)
	}

	return nil
}

// FileName returns the file a planned resource is written to, for example
// "04-nsg-secure-vm.networksecuritygroups.json".
func FileName(r *securevm.PlannedResource) string {
	return fmt.Sprintf("%02d-%s.%s.json", int(r.Step), sanitizeFilename(r.Name), typeSuffix(r.Type))
}

// typeSuffix is the last segment of a resource type, lower cased.
func typeSuffix(resourceType string) string {
	t := resourceType[strings.LastIndex(resourceType, "/")+1:]
	if t == "" {
		return "resource"
	}

	return strings.ToLower(t)
}

func sanitizeFilename(s string) string {
	if s == "" {
		return "unnamed"
	}
	// Replace path separators and common problematic characters; trim spaces.
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	s = replacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < controlCharLimit {
			return '_' // control chars
		}

		return r
	}, s)

	s = strings.TrimSpace(s)
	if s == "" {
		return "unnamed"
	}

	return s
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// writeJSONFile writes v to a temporary file first and renames it, so readers never see a partial file.
func (w *FSWriter) writeJSONFile(finalPath string, v any) error {
	dir := filepath.Dir(finalPath)

	tmp, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", finalPath, err)
	}

	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(w.escapeHTML)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode json for %q: %w", finalPath, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp for %q: %w", finalPath, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %q: %w", finalPath, err)
	}

	if err := os.Rename(tmpName, finalPath); err != nil {
		return fmt.Errorf("rename temp to final for %q: %w", finalPath, err)
	}

	if err := os.Chmod(finalPath, filePerm); err != nil {
		return fmt.Errorf("chmod final for %q: %w", finalPath, err)
	}

	return nil
}
