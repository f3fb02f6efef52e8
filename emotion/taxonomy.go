// Package emotion holds the emotion taxonomy and the rules that map a raw
// model answer onto one of its labels.
package emotion

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Protected labels. They can never be removed from a taxonomy.
const (
	Happy     = "Happy"
	Sad       = "Sad"
	Angry     = "Angry"
	Surprised = "Surprised"
	Neutral   = "Neutral"
)

// ProtectedLabels in their default order.
var ProtectedLabels = []string{Happy, Sad, Angry, Surprised, Neutral}

var (
	ErrProtectedLabel = errors.New("label is protected and cannot be removed")
	ErrEmptyLabel     = errors.New("label name must not be empty")
)

// IsProtected reports whether label is one of the five default labels.
func IsProtected(label string) bool {
	for _, p := range ProtectedLabels {
		if p == label {
			return true
		}
	}
	return false
}

// Taxonomy is an insertion-ordered mapping from label to image URL.
// The zero value is an empty taxonomy ready to use.
type Taxonomy struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewTaxonomy returns an empty taxonomy.
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{m: orderedmap.New[string, string]()}
}

// DefaultTaxonomy returns the five protected labels with placeholder images.
func DefaultTaxonomy() *Taxonomy {
	t := NewTaxonomy()
	for _, l := range ProtectedLabels {
		t.m.Set(l, "https://example.com/"+strings.ToLower(l)+".png")
	}
	return t
}

func (t *Taxonomy) init() {
	if t.m == nil {
		t.m = orderedmap.New[string, string]()
	}
}

// Add appends label with its image URL. An existing label keeps its
// position and takes the new URL.
func (t *Taxonomy) Add(label, url string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyLabel
	}
	t.init()
	t.m.Set(label, strings.TrimSpace(url))
	return nil
}

// Remove deletes label. Protected labels are refused and leave the
// taxonomy unchanged; unknown labels are ignored.
func (t *Taxonomy) Remove(label string) error {
	if IsProtected(label) {
		return ErrProtectedLabel
	}
	if t.m != nil {
		t.m.Delete(label)
	}
	return nil
}

// Image returns the URL stored for label.
func (t *Taxonomy) Image(label string) (string, bool) {
	if t == nil || t.m == nil {
		return "", false
	}
	return t.m.Get(label)
}

// Has reports whether label is present.
func (t *Taxonomy) Has(label string) bool {
	_, ok := t.Image(label)
	return ok
}

// Labels returns the labels in insertion order.
func (t *Taxonomy) Labels() []string {
	if t == nil || t.m == nil {
		return nil
	}
	labels := make([]string, 0, t.m.Len())
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		labels = append(labels, p.Key)
	}
	return labels
}

// Len returns the number of labels.
func (t *Taxonomy) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

// ResolveImage returns the image to show for label. A label that is absent
// or has no URL falls back to Neutral. ok is false when Neutral has no URL
// either; the caller should then leave the display as it is.
func (t *Taxonomy) ResolveImage(label string) (resolved, url string, ok bool) {
	if u, found := t.Image(label); found && u != "" {
		return label, u, true
	}
	if u, found := t.Image(Neutral); found && u != "" {
		return Neutral, u, true
	}
	log.Printf("emotion: no image for %q and no Neutral fallback", label)
	return Neutral, "", false
}

// MissingImages lists labels whose URL is empty, in order.
func (t *Taxonomy) MissingImages() []string {
	var missing []string
	if t == nil || t.m == nil {
		return missing
	}
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		if p.Value == "" {
			missing = append(missing, p.Key)
		}
	}
	return missing
}

// EnsureProtected appends any missing protected label with an empty URL.
// It reports whether the taxonomy changed.
func (t *Taxonomy) EnsureProtected() bool {
	t.init()
	changed := false
	for _, l := range ProtectedLabels {
		if _, ok := t.m.Get(l); !ok {
			t.m.Set(l, "")
			changed = true
		}
	}
	return changed
}

// Clone returns an independent copy.
func (t *Taxonomy) Clone() *Taxonomy {
	c := NewTaxonomy()
	if t == nil || t.m == nil {
		return c
	}
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		c.m.Set(p.Key, p.Value)
	}
	return c
}

// Equal reports whether both taxonomies hold the same labels, URLs and order.
func (t *Taxonomy) Equal(o *Taxonomy) bool {
	if t.Len() != o.Len() {
		return false
	}
	if t.Len() == 0 {
		return true
	}
	a, b := t.m.Oldest(), o.m.Oldest()
	for a != nil && b != nil {
		if a.Key != b.Key || a.Value != b.Value {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return true
}

func (t *Taxonomy) MarshalJSON() ([]byte, error) {
	if t == nil || t.m == nil || t.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return t.m.MarshalJSON()
}

func (t *Taxonomy) UnmarshalJSON(data []byte) error {
	t.m = orderedmap.New[string, string]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return t.m.UnmarshalJSON(data)
}

// JSONSchema describes the taxonomy as an object of label → image URL.
func (Taxonomy) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		Description:          "Ordered mapping of emotion label to image URL.",
		AdditionalProperties: &jsonschema.Schema{Type: "string"},
	}
}

var _ json.Marshaler = (*Taxonomy)(nil)
