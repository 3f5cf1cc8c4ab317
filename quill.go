// Package quill generates paginated PDF documents from a structured
// content tree and manipulates existing files: merge, split, and
// metadata extraction. Layout for one document is a pure, synchronous
// pipeline; independent documents can be generated concurrently.
package quill

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/quillpdf/quill/docops"
	"github.com/quillpdf/quill/flow"
	"github.com/quillpdf/quill/fonts"
	"github.com/quillpdf/quill/model"
	"github.com/quillpdf/quill/observability"
	"github.com/quillpdf/quill/render"
	"github.com/quillpdf/quill/writer"
)

// Option configures generation.
type Option func(*config)

type config struct {
	log      observability.Logger
	compress bool
}

// WithLogger routes pipeline logging through log.
func WithLogger(log observability.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithoutCompression keeps content streams uncompressed; useful when
// inspecting output.
func WithoutCompression() Option {
	return func(c *config) { c.compress = false }
}

func newConfig(opts []Option) *config {
	c := &config{log: observability.NopLogger{}, compress: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate lays out and serializes one document. Identical documents
// produce identical bytes.
func Generate(doc *model.Document, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)

	set := fonts.NewSet()
	for _, f := range doc.Fonts {
		if err := set.RegisterTrueType(f.Name, f.Data); err != nil {
			return nil, err
		}
	}

	engine, err := flow.New(doc, set, cfg.log)
	if err != nil {
		return nil, err
	}
	res, err := engine.Layout()
	if err != nil {
		return nil, err
	}
	sem, err := render.New(set, cfg.log).Render(res)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, sem, writer.Options{Compress: cfg.compress}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateFile generates to path, writing through a temporary file and
// renaming into place so a failed generation never leaves a partial
// file behind.
func GenerateFile(path string, doc *model.Document, opts ...Option) error {
	data, err := Generate(doc, opts...)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// GenerateBatch generates independent documents with at most workers
// goroutines. The result slice aligns with docs; failed entries are
// nil and their errors are joined, so one bad document never hides
// another's output.
func GenerateBatch(docs []*model.Document, workers int, opts ...Option) ([][]byte, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([][]byte, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc *model.Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			data, err := Generate(doc, opts...)
			if err != nil {
				errs[i] = fmt.Errorf("document %d: %w", i, err)
				return
			}
			results[i] = data
		}(i, doc)
	}
	wg.Wait()
	return results, errors.Join(errs...)
}

// MergeFiles concatenates the inputs' pages in argument order into
// output.
func MergeFiles(output string, inputs ...string) error {
	data := make([][]byte, 0, len(inputs))
	for _, path := range inputs {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		data = append(data, b)
	}
	merged, err := docops.Merge(data)
	if err != nil {
		return err
	}
	return writeFileAtomic(output, merged)
}

// SplitFile partitions input per policy. Part paths come from pattern,
// which must contain one %d verb for the 1-based part number.
func SplitFile(input string, policy docops.SplitPolicy, pattern string) ([]string, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	parts, err := docops.Split(data, policy)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(parts))
	for i, part := range parts {
		path := fmt.Sprintf(pattern, i+1)
		if err := writeFileAtomic(path, part); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExtractInfoFile reads structural metadata without decrypting.
func ExtractInfoFile(path string) (*docops.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return docops.ExtractInfo(data)
}

// writeFileAtomic stages the bytes next to the destination and renames
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".quill-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
