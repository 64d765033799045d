package selection

import "github.com/AngelCh415/campaign-dashboard/internal/models"

// Filter is the set of campaigns shown on the charts. Insertion order is kept
// so series colors stay stable between renders.
type Filter struct {
	ids         []models.ID
	seen        map[models.ID]struct{}
	initialized bool
}

func New() *Filter {
	return &Filter{seen: make(map[models.ID]struct{})}
}

func (f *Filter) Initialized() bool { return f.initialized }

// EnsureDefault seeds the selection the first time it is called. Later calls
// are ignored, even if the user has since emptied the selection.
func (f *Filter) EnsureDefault(ids []models.ID) bool {
	if f.initialized {
		return false
	}
	f.Replace(ids)
	return true
}

// Reset empties the selection and lets EnsureDefault seed it again.
func (f *Filter) Reset() {
	f.ids = nil
	f.seen = make(map[models.ID]struct{})
	f.initialized = false
}

func (f *Filter) Add(ids ...models.ID) {
	f.initialized = true
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := f.seen[id]; ok {
			continue
		}
		f.seen[id] = struct{}{}
		f.ids = append(f.ids, id)
	}
}

func (f *Filter) Remove(ids ...models.ID) {
	f.initialized = true
	drop := make(map[models.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(f.seen, id)
	}
	kept := f.ids[:0]
	for _, id := range f.ids {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	f.ids = kept
}

func (f *Filter) Replace(ids []models.ID) {
	f.ids = nil
	f.seen = make(map[models.ID]struct{}, len(ids))
	f.Add(ids...)
}

// IDs returns a copy of the current selection in insertion order.
func (f *Filter) IDs() []models.ID {
	out := make([]models.ID, len(f.ids))
	copy(out, f.ids)
	return out
}

func (f *Filter) Contains(id models.ID) bool {
	_, ok := f.seen[id]
	return ok
}

func (f *Filter) Len() int { return len(f.ids) }
