package catalog

import (
	"github.com/maaaahin/drugo-storefront/internal/api"
)

// PriceBucket is one predefined, mutually exclusive price range facet.
type PriceBucket struct {
	ID    string  `json:"_id"`
	Label string  `json:"name"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Buckets is the storefront's fixed price facet table.
var Buckets = []PriceBucket{
	{ID: "0", Label: "0 to 19", Min: 0, Max: 19},
	{ID: "1", Label: "20 to 39", Min: 20, Max: 39},
	{ID: "2", Label: "40 to 59", Min: 40, Max: 59},
	{ID: "3", Label: "60 to 79", Min: 60, Max: 79},
	{ID: "4", Label: "80 to 99", Min: 80, Max: 99},
	{ID: "5", Label: "100 or more", Min: 100, Max: 9999},
}

func BucketByID(id string) (PriceBucket, bool) {
	for _, b := range Buckets {
		if b.ID == id {
			return b, true
		}
	}
	return PriceBucket{}, false
}

// Composer holds the active filter selection: a set of category IDs (OR
// semantics among them) and at most one price bucket. It is pure state; the
// Controller owns it and reacts to every change.
type Composer struct {
	selected []string // insertion order kept so queries stay stable
	bucket   *PriceBucket
}

// ToggleCategory adds or removes id from the selected set. Idempotent.
func (f *Composer) ToggleCategory(id string, selected bool) {
	for i, existing := range f.selected {
		if existing == id {
			if !selected {
				f.selected = append(f.selected[:i], f.selected[i+1:]...)
			}
			return
		}
	}
	if selected {
		f.selected = append(f.selected, id)
	}
}

// SetPriceBucket replaces the single active bucket; nil clears it. Setting a
// new bucket always overwrites, never appends.
func (f *Composer) SetPriceBucket(b *PriceBucket) {
	if b == nil {
		f.bucket = nil
		return
	}
	bucket := *b
	f.bucket = &bucket
}

func (f *Composer) Reset() {
	f.selected = nil
	f.bucket = nil
}

// Active reports whether any filtering predicate is in effect.
func (f *Composer) Active() bool {
	return len(f.selected) > 0 || f.bucket != nil
}

// Query renders the selection into the filter endpoint's wire shape.
func (f *Composer) Query() api.FilterQuery {
	q := api.FilterQuery{
		Checked: append([]string(nil), f.selected...),
		Radio:   []float64{},
	}
	if q.Checked == nil {
		q.Checked = []string{}
	}
	if f.bucket != nil {
		q.Radio = []float64{f.bucket.Min, f.bucket.Max}
	}
	return q
}

// Selected returns a copy of the selected category IDs.
func (f *Composer) Selected() []string {
	return append([]string(nil), f.selected...)
}

// Bucket returns the active price bucket, if any.
func (f *Composer) Bucket() *PriceBucket {
	if f.bucket == nil {
		return nil
	}
	bucket := *f.bucket
	return &bucket
}
