package parser

import "github.com/quillpdf/quill/ir/raw"

// PageNode is one leaf of the page tree with its inheritable
// attributes flattened in.
type PageNode struct {
	Ref       raw.ObjectRef
	MediaBox  [4]float64
	Resources raw.Object
	Rotate    int
}

// Width returns the page width in default user space units.
func (n PageNode) Width() float64 { return n.MediaBox[2] - n.MediaBox[0] }

// Height returns the page height in default user space units.
func (n PageNode) Height() float64 { return n.MediaBox[3] - n.MediaBox[1] }

// Pages walks the page tree in document order, resolving the
// inheritable MediaBox, Resources, and Rotate attributes.
func Pages(doc *raw.Document) ([]PageNode, error) {
	rootObj, ok := doc.Trailer.Get("Root")
	if !ok {
		return nil, corrupt(0, "trailer has no Root")
	}
	catalog, ok := doc.ResolveDict(rootObj)
	if !ok {
		return nil, corrupt(0, "catalog is not a dictionary")
	}
	pagesObj, ok := catalog.Get("Pages")
	if !ok {
		return nil, corrupt(0, "catalog has no page tree")
	}

	var nodes []PageNode
	inherited := PageNode{MediaBox: [4]float64{0, 0, 612, 792}}
	visited := make(map[raw.ObjectRef]bool)
	if err := walkPageTree(doc, pagesObj, inherited, visited, &nodes); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, corrupt(0, "page tree has no pages")
	}
	return nodes, nil
}

func walkPageTree(doc *raw.Document, obj raw.Object, inherited PageNode, visited map[raw.ObjectRef]bool, out *[]PageNode) error {
	var ref raw.ObjectRef
	if r, ok := obj.(raw.Ref); ok {
		ref = r.R
		if visited[ref] {
			return corrupt(0, "page tree cycle at object %d", ref.Num)
		}
		visited[ref] = true
	}
	node, ok := doc.ResolveDict(obj)
	if !ok {
		return corrupt(0, "page tree node is not a dictionary")
	}

	attrs := inherited
	attrs.Ref = ref
	if mb, ok := rectValues(doc, node, "MediaBox"); ok {
		attrs.MediaBox = mb
	}
	if res, ok := node.Get("Resources"); ok {
		attrs.Resources = res
	}
	if rot, ok := node.Get("Rotate"); ok {
		if n, ok := doc.Resolve(rot).(raw.Number); ok {
			attrs.Rotate = int(n.I)
		}
	}

	typ := dictName(doc, node, "Type")
	kids, hasKids := node.Get("Kids")
	if typ == "Pages" || (typ == "" && hasKids) {
		arr, ok := doc.Resolve(kids).(*raw.Array)
		if !ok {
			return corrupt(0, "Kids is not an array")
		}
		for _, kid := range arr.Items {
			if err := walkPageTree(doc, kid, attrs, visited, out); err != nil {
				return err
			}
		}
		return nil
	}
	if typ != "Page" {
		return corrupt(0, "page tree node has type %q", typ)
	}
	*out = append(*out, attrs)
	return nil
}

func dictName(doc *raw.Document, d *raw.Dict, key string) string {
	if o, ok := d.Get(key); ok {
		if n, ok := doc.Resolve(o).(raw.Name); ok {
			return n.Val
		}
	}
	return ""
}

func rectValues(doc *raw.Document, d *raw.Dict, key string) ([4]float64, bool) {
	o, ok := d.Get(key)
	if !ok {
		return [4]float64{}, false
	}
	arr, ok := doc.Resolve(o).(*raw.Array)
	if !ok || arr.Len() != 4 {
		return [4]float64{}, false
	}
	var vals [4]float64
	for i := 0; i < 4; i++ {
		n, ok := doc.Resolve(arr.Items[i]).(raw.Number)
		if !ok {
			return [4]float64{}, false
		}
		vals[i] = n.Float()
	}
	return vals, true
}
