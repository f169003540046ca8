package channel

import (
	"errors"
	"sort"

	"github.com/samber/lo"
)

// Uncategorized is assigned to channels whose file entry has no category.
const Uncategorized = "Uncategorized"

// ErrEmpty is returned when a channel file contains no channels.
var ErrEmpty = errors.New("channel registry is empty")

// Registry is the ordered, read-only list of channels supplied at startup.
type Registry struct {
	channels []Channel
}

// NewRegistry copies channels into a new registry.
func NewRegistry(channels ...Channel) *Registry {
	return &Registry{channels: append([]Channel(nil), channels...)}
}

// Len returns the number of channels.
func (r *Registry) Len() int {
	return len(r.channels)
}

// Get returns the channel at index i.
func (r *Registry) Get(i int) (Channel, bool) {
	if i < 0 || i >= len(r.channels) {
		return Channel{}, false
	}
	return r.channels[i], true
}

// All returns a copy of every channel in registry order.
func (r *Registry) All() []Channel {
	return append([]Channel(nil), r.channels...)
}

// Categories returns the sorted set of categories present in the registry.
func (r *Registry) Categories() []string {
	categories := lo.Uniq(lo.Map(r.channels, func(c Channel, _ int) string {
		return c.Category
	}))
	sort.Strings(categories)
	return categories
}

// Filter returns the indexes of channels matching f, in registry order.
func (r *Registry) Filter(f Filter) []int {
	indexes := make([]int, 0, len(r.channels))
	for i, c := range r.channels {
		if f.Match(c) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
