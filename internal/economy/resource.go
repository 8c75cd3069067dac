// Package economy holds the resource catalog, stock ledgers, recipes,
// and the economic actors (companies, producers, consumers).
package economy

// ResourceHandle identifies a fungible resource. Valid handles are
// [0, catalog count).
type ResourceHandle = int

// Resource is a catalog entry. Only the name is carried; all other
// properties (prices, conversion ratios) live in recipes and intents.
type Resource struct {
	Name string `yaml:"name"`
}

// ResourceCatalog is the immutable registry of resources, indexed by handle.
// Read-only after world construction.
type ResourceCatalog struct {
	Resources []Resource `yaml:"resources"`
}

// NewResourceCatalog builds a catalog from an ordered name list.
func NewResourceCatalog(names []string) *ResourceCatalog {
	c := &ResourceCatalog{Resources: make([]Resource, 0, len(names))}
	for _, n := range names {
		c.Resources = append(c.Resources, Resource{Name: n})
	}
	return c
}

// Count returns the number of registered resources.
func (c *ResourceCatalog) Count() int {
	return len(c.Resources)
}

// Name returns the human name for a handle, or "" for an invalid handle.
func (c *ResourceCatalog) Name(h ResourceHandle) string {
	if h < 0 || h >= len(c.Resources) {
		return ""
	}
	return c.Resources[h].Name
}

// HandleByName looks up a resource handle by its name.
func (c *ResourceCatalog) HandleByName(name string) (ResourceHandle, bool) {
	for h, r := range c.Resources {
		if r.Name == name {
			return h, true
		}
	}
	return 0, false
}
