package item

// Item is one unit of content known to a run.
//
// Resource reports the provider-relative path backing the item, if any.
// Items without a resource are generated (index pages, feeds, ...).
type Item interface {
	ID() ID
	Resource() (string, bool)
}

// Source is an item read from a provider resource.
type Source struct {
	Identifier ID
	Path       string // provider-relative, slash-separated
}

// NewSource returns the item for a provider resource, identified by its path.
func NewSource(resource string) Source {
	return Source{Identifier: New(resource), Path: resource}
}

func (s Source) ID() ID { return s.Identifier }

func (s Source) Resource() (string, bool) { return s.Path, true }

// Virtual is an item with no backing resource.
type Virtual struct {
	Identifier ID
}

func (v Virtual) ID() ID { return v.Identifier }

func (v Virtual) Resource() (string, bool) { return "", false }
