package filter

// Source is a row set the view can project.
type Source interface {
	Len() int
	// FilterFields returns the name and category of row i.
	FilterFields(i int) (name, category string)
}

// View is a filtered projection over a Source. It holds source indices
// only; rows are never copied, reordered or mutated. Call Refresh after
// the source changes.
type View struct {
	src      Source
	name     string
	category string
	filter   Filter
	indices  []int
}

// NewView returns a view showing every row of src.
func NewView(src Source) *View {
	v := &View{src: src}
	v.Refresh()
	return v
}

// SetName replaces the name term and recomputes the projection.
func (v *View) SetName(name string) {
	v.name = name
	v.filter = New(v.name, v.category)
	v.Refresh()
}

// SetCategory replaces the category term and recomputes the projection.
func (v *View) SetCategory(category string) {
	v.category = category
	v.filter = New(v.name, v.category)
	v.Refresh()
}

// Terms returns the raw name and category terms.
func (v *View) Terms() (name, category string) { return v.name, v.category }

// Clear drops both terms.
func (v *View) Clear() {
	v.name, v.category = "", ""
	v.filter = Filter{}
	v.Refresh()
}

// Refresh recomputes the visible indices from the source.
func (v *View) Refresh() {
	n := v.src.Len()
	v.indices = v.indices[:0]
	for i := 0; i < n; i++ {
		name, category := v.src.FilterFields(i)
		if v.filter.Accepts(name, category) {
			v.indices = append(v.indices, i)
		}
	}
}

// Count returns the number of visible rows.
func (v *View) Count() int { return len(v.indices) }

// SourceIndex maps a visible row to its source index.
func (v *View) SourceIndex(row int) (int, bool) {
	if row < 0 || row >= len(v.indices) {
		return -1, false
	}
	return v.indices[row], true
}

// Indices returns a copy of the visible source indices in source order.
func (v *View) Indices() []int {
	return append([]int(nil), v.indices...)
}
