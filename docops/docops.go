// Package docops manipulates already-serialized files: merging page
// sequences, splitting one file into parts, and read-only metadata
// extraction. Inputs are never mutated; every operation produces new
// output bytes or fails without partial results.
package docops

import (
	"bytes"
	"fmt"

	"github.com/quillpdf/quill/ir/raw"
	"github.com/quillpdf/quill/parser"
	"github.com/quillpdf/quill/writer"
)

// CorruptInputError is the parser's structural error, surfaced
// unchanged so callers can match on it across layers.
type CorruptInputError = parser.CorruptInputError

// InvalidRangeError reports a split range outside the input's pages.
type InvalidRangeError struct {
	From, To  int
	PageCount int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid page range %d-%d for %d-page document", e.From, e.To, e.PageCount)
}

// Range is an inclusive 1-based page interval.
type Range struct {
	From, To int
}

// SplitPolicy selects the partitioning: a fixed part length or an
// explicit range list. Exactly one must be set. Ranges may overlap or
// omit pages; no deduplication happens.
type SplitPolicy struct {
	PagesPerPart int
	Ranges       []Range
}

// Info is the metadata record for one file.
type Info struct {
	PageCount int
	ByteSize  int64
	Encrypted bool
	Version   string
	PageSizes []PageSize
}

// PageSize is one page's extent in points.
type PageSize struct {
	Width, Height float64
}

// source is a loaded input: the object table plus the flattened page
// list.
type source struct {
	doc   *raw.Document
	pages []parser.PageNode
}

// load parses and validates one input. Encrypted inputs are opened
// with the empty user password; anything else is treated as corrupt
// for manipulation purposes.
func load(data []byte) (*source, error) {
	doc, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Encrypted {
		if err := parser.Decrypt(doc, ""); err != nil {
			return nil, &CorruptInputError{Msg: "cannot open encrypted input: " + err.Error()}
		}
	}
	pages, err := parser.Pages(doc)
	if err != nil {
		return nil, err
	}
	return &source{doc: doc, pages: pages}, nil
}

// Merge concatenates the inputs' page sequences in argument order.
// One corrupt input fails the whole merge; no pages are dropped
// silently.
func Merge(inputs [][]byte) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, &CorruptInputError{Msg: "merge needs at least one input"}
	}
	sources := make([]*source, 0, len(inputs))
	for _, data := range inputs {
		src, err := load(data)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	var picks []pagePick
	for _, src := range sources {
		for _, node := range src.pages {
			picks = append(picks, pagePick{src: src, node: node})
		}
	}
	return assemble(picks)
}

// Split partitions the input per policy. Each part is a complete
// standalone file.
func Split(input []byte, policy SplitPolicy) ([][]byte, error) {
	if (policy.PagesPerPart > 0) == (len(policy.Ranges) > 0) {
		return nil, fmt.Errorf("split policy must set exactly one of pages per part or ranges")
	}
	src, err := load(input)
	if err != nil {
		return nil, err
	}
	total := len(src.pages)

	var ranges []Range
	if policy.PagesPerPart > 0 {
		k := policy.PagesPerPart
		for from := 1; from <= total; from += k {
			to := from + k - 1
			if to > total {
				to = total
			}
			ranges = append(ranges, Range{From: from, To: to})
		}
	} else {
		ranges = policy.Ranges
	}

	parts := make([][]byte, 0, len(ranges))
	for _, rg := range ranges {
		if rg.From < 1 || rg.To > total || rg.From > rg.To {
			return nil, &InvalidRangeError{From: rg.From, To: rg.To, PageCount: total}
		}
		var picks []pagePick
		for i := rg.From; i <= rg.To; i++ {
			picks = append(picks, pagePick{src: src, node: src.pages[i-1]})
		}
		part, err := assemble(picks)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// ExtractInfo reads structural metadata. Encrypted inputs are not
// decrypted; the page tree itself is never encrypted, so dimensions
// stay readable.
func ExtractInfo(input []byte) (*Info, error) {
	doc, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}
	pages, err := parser.Pages(doc)
	if err != nil {
		return nil, err
	}
	info := &Info{
		PageCount: len(pages),
		ByteSize:  int64(len(input)),
		Encrypted: doc.Encrypted,
		Version:   doc.Version,
	}
	for _, node := range pages {
		info.PageSizes = append(info.PageSizes, PageSize{Width: node.Width(), Height: node.Height()})
	}
	return info, nil
}

type pagePick struct {
	src  *source
	node parser.PageNode
}

// assemble builds a fresh file from the picked pages, deep-copying
// each page's object graph with new numbering.
func assemble(picks []pagePick) ([]byte, error) {
	out := &raw.Document{Version: "1.7", Objects: make(map[raw.ObjectRef]raw.Object)}
	a := &assembler{out: out, refMaps: make(map[*source]map[raw.ObjectRef]raw.Ref)}

	catalogRef := a.alloc()
	pagesRef := a.alloc()

	kids := raw.NewArray()
	for _, pick := range picks {
		pageRef, err := a.copyPage(pick.src, pick.node, pagesRef)
		if err != nil {
			return nil, err
		}
		kids.Append(pageRef)
	}

	pages := raw.NewDict()
	pages.Set("Type", raw.NewName("Pages"))
	pages.Set("Count", raw.NewInt(int64(kids.Len())))
	pages.Set("Kids", kids)
	out.Objects[pagesRef.R] = pages

	catalog := raw.NewDict()
	catalog.Set("Type", raw.NewName("Catalog"))
	catalog.Set("Pages", pagesRef)
	out.Objects[catalogRef.R] = catalog

	trailer := raw.NewDict()
	trailer.Set("Root", catalogRef)
	out.Trailer = trailer

	var buf bytes.Buffer
	if err := writer.WriteRaw(&buf, out, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type assembler struct {
	out     *raw.Document
	next    int
	refMaps map[*source]map[raw.ObjectRef]raw.Ref
}

func (a *assembler) alloc() raw.Ref {
	a.next++
	return raw.NewRef(a.next, 0)
}

func (a *assembler) refMap(src *source) map[raw.ObjectRef]raw.Ref {
	m, ok := a.refMaps[src]
	if !ok {
		m = make(map[raw.ObjectRef]raw.Ref)
		a.refMaps[src] = m
	}
	return m
}

// copyPage clones one page dictionary, reparenting it and pinning the
// inherited attributes the page may have relied on.
func (a *assembler) copyPage(src *source, node parser.PageNode, parent raw.Ref) (raw.Ref, error) {
	dict, ok := src.doc.ResolveDict(raw.Ref{R: node.Ref})
	if !ok {
		return raw.Ref{}, &CorruptInputError{Msg: fmt.Sprintf("page object %d is not a dictionary", node.Ref.Num)}
	}

	page := raw.NewDict()
	page.Set("Type", raw.NewName("Page"))
	page.Set("Parent", parent)
	for k, v := range dict.KV {
		switch k {
		case "Type", "Parent":
			continue
		}
		page.Set(k, a.copyObject(src, v))
	}
	page.Set("MediaBox", raw.NewArray(
		raw.NewReal(node.MediaBox[0]), raw.NewReal(node.MediaBox[1]),
		raw.NewReal(node.MediaBox[2]), raw.NewReal(node.MediaBox[3])))
	if _, ok := page.Get("Resources"); !ok && node.Resources != nil {
		page.Set("Resources", a.copyObject(src, node.Resources))
	}
	if node.Rotate != 0 {
		page.Set("Rotate", raw.NewInt(int64(node.Rotate)))
	}

	ref := a.alloc()
	a.out.Objects[ref.R] = page
	return ref, nil
}

// copyObject deep-copies a value, pulling referenced objects across
// with renumbering. Shared targets are copied once per source.
func (a *assembler) copyObject(src *source, obj raw.Object) raw.Object {
	switch v := obj.(type) {
	case raw.Ref:
		m := a.refMap(src)
		if mapped, ok := m[v.R]; ok {
			return mapped
		}
		target, ok := src.doc.Objects[v.R]
		if !ok {
			return raw.Null{}
		}
		ref := a.alloc()
		m[v.R] = ref
		a.out.Objects[ref.R] = a.copyObject(src, target)
		return ref
	case *raw.Array:
		arr := raw.NewArray()
		for _, item := range v.Items {
			arr.Append(a.copyObject(src, item))
		}
		return arr
	case *raw.Dict:
		dict := raw.NewDict()
		for k, item := range v.KV {
			dict.Set(k, a.copyObject(src, item))
		}
		return dict
	case *raw.Stream:
		dict, _ := a.copyObject(src, v.Dict).(*raw.Dict)
		return raw.NewStream(dict, append([]byte(nil), v.Data...))
	}
	return obj
}
