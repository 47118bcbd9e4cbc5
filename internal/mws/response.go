package mws

import (
	"bytes"
	"crypto/md5" //nolint:gosec // Content-MD5 is the service's integrity header, not a security control.
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Kind distinguishes parsed XML responses from raw payloads.
type Kind int

const (
	// KindXML responses carry a parsed tree.
	KindXML Kind = iota
	// KindRaw responses carry bytes verified against Content-MD5.
	KindRaw
)

func (k Kind) String() string {
	if k == KindRaw {
		return "raw"
	}
	return "xml"
}

var namespaceRe = regexp.MustCompile(` xmlns(:ns2)?="[^"]+"|(ns2:)|(xml:)`)

func stripNamespaces(body []byte) []byte {
	return namespaceRe.ReplaceAll(body, nil)
}

// Node is a generic element of a decoded XML document.
type Node struct {
	Name     string
	Attrs    map[string]string
	Value    string
	Children []*Node
}

// Child returns the first direct child named name, or nil. Safe on a nil Node.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child named name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Path walks slash-separated child names, e.g. "ReportRequestInfo/ReportType".
func (n *Node) Path(path string) *Node {
	cur := n
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		cur = cur.Child(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Text returns the trimmed text of the node at path, or "".
func (n *Node) Text(path string) string {
	if c := n.Path(path); c != nil {
		return c.Value
	}
	return ""
}

// Attr returns the named attribute or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[name]
}

// Map converts the subtree into plain maps and slices for JSON rendering.
// Leaves become their text and repeated child names become lists.
// Attributes are keyed "@name"; a leaf with attributes keeps its text
// under "#text".
func (n *Node) Map() any {
	if n == nil {
		return nil
	}
	if len(n.Children) == 0 && len(n.Attrs) == 0 {
		return n.Value
	}
	out := make(map[string]any, len(n.Children)+len(n.Attrs)+1)
	for k, v := range n.Attrs {
		out["@"+k] = v
	}
	if len(n.Children) == 0 && n.Value != "" {
		out["#text"] = n.Value
	}
	for _, c := range n.Children {
		v := c.Map()
		switch prev := out[c.Name].(type) {
		case nil:
			out[c.Name] = v
		case []any:
			out[c.Name] = append(prev, v)
		default:
			out[c.Name] = []any{prev, v}
		}
	}
	return out
}

// Decode parses body after namespace stripping. With rootKey empty the root
// element is returned; otherwise its child named rootKey (nil when absent).
// Bodies that are not a well-formed XML document return ErrNotXML.
func Decode(body []byte, rootKey string) (*Node, error) {
	root, err := parseTree(stripNamespaces(body))
	if err != nil {
		return nil, err
	}
	if rootKey == "" {
		return root, nil
	}
	return root.Child(rootKey), nil
}

func parseTree(body []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		root  *Node
		stack []*Node
		text  []*strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("%w: multiple root elements", ErrNotXML)
			}
			node := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else {
				root = node
			}
			stack = append(stack, node)
			text = append(text, &strings.Builder{})
		case xml.EndElement:
			top := len(stack) - 1
			stack[top].Value = strings.TrimSpace(text[top].String())
			stack = stack[:top]
			text = text[:top]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("%w: text outside root element", ErrNotXML)
				}
				continue
			}
			text[len(text)-1].Write(t)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrNotXML)
	}
	return root, nil
}

// Response is the decoded result of one call.
type Response struct {
	Action     string
	Kind       Kind
	StatusCode int
	Header     http.Header
	// Body is the original, unmodified response body.
	Body []byte
	// Root is the document element; Tree is the <Action>Result subtree when
	// present. Both are nil for raw responses.
	Root      *Node
	Tree      *Node
	RequestID string

	stripped []byte
}

func newResponse(action string, resp *http.Response, body []byte) (*Response, error) {
	r := &Response{
		Action:     action,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}

	stripped := stripNamespaces(body)
	root, err := parseTree(stripped)
	if err == nil {
		r.Kind = KindXML
		r.Root = root
		r.Tree = root.Child(action + "Result")
		r.RequestID = root.Text("ResponseMetadata/RequestId")
		r.stripped = stripped
		return r, nil
	}

	r.Kind = KindRaw
	if err := verifyContentMD5(body, resp.Header.Get("Content-MD5")); err != nil {
		return nil, err
	}
	return r, nil
}

// Unmarshal decodes the <Action>Result element into v with encoding/xml.
func (r *Response) Unmarshal(v any) error {
	if r.Kind != KindXML {
		return fmt.Errorf("%s: %w", r.Action, ErrNotXML)
	}
	return decodeElement(r.stripped, r.Action+"Result", v)
}

// UnmarshalAs decodes the first element named name anywhere in the document.
// Used for the ByNextToken variants whose result element differs from Action.
func (r *Response) UnmarshalAs(name string, v any) error {
	if r.Kind != KindXML {
		return fmt.Errorf("%s: %w", r.Action, ErrNotXML)
	}
	return decodeElement(r.stripped, name, v)
}

func decodeElement(body []byte, name string, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("element %s not found in response", name)
		}
		if err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == name {
			if err := dec.DecodeElement(v, &se); err != nil {
				return fmt.Errorf("decoding %s: %w", name, err)
			}
			return nil
		}
	}
}

// ContentMD5 returns base64(MD5(body)), the value of the Content-MD5 header.
func ContentMD5(body []byte) string {
	sum := md5.Sum(body) //nolint:gosec // see import
	return base64.StdEncoding.EncodeToString(sum[:])
}

func verifyContentMD5(body []byte, expected string) error {
	if expected == "" {
		return nil
	}
	if actual := ContentMD5(body); actual != expected {
		return &IntegrityError{Expected: expected, Actual: actual}
	}
	return nil
}

// Timestamp is an optional service datetime. Empty elements decode to the
// zero value.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("parsing timestamp %q", s)
}

// Ptr returns nil for the zero value and a UTC copy otherwise.
func (t Timestamp) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// decodeAll decodes every element named name, in document order. Used where
// one call returns a result element per requested identifier.
func decodeAll[T any](r *Response, name string) ([]T, error) {
	if r.Kind != KindXML {
		return nil, fmt.Errorf("%s: %w", r.Action, ErrNotXML)
	}
	dec := xml.NewDecoder(bytes.NewReader(r.stripped))
	var out []T
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != name {
			continue
		}
		var v T
		if err := dec.DecodeElement(&v, &se); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		out = append(out, v)
	}
}
