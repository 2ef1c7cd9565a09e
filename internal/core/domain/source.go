package domain

import "fmt"

// DefaultPriority is assigned to sources that do not declare one.
// Lower values mean higher precedence. Priority is carried through to
// chunk metadata but does not influence processing order.
const DefaultPriority = 100

// DefaultCategory labels chunks from sources without an explicit category.
const DefaultCategory = "general"

// DataSource describes one configured document collection.
// Constructed from configuration at the start of a sync run and
// immutable for the duration of that run.
type DataSource struct {
	// Name uniquely identifies the source.
	Name string `yaml:"name"`

	// Path is the filesystem root to scan.
	Path string `yaml:"path"`

	// Category labels every chunk produced from this source.
	// Used downstream for filtered retrieval.
	Category string `yaml:"category"`

	// Priority is inert metadata attached to chunks (lower = higher
	// precedence). It never affects processing order.
	Priority int `yaml:"priority"`

	// Patterns are glob patterns selecting files under Path.
	Patterns []string `yaml:"patterns"`

	// Enabled gates whether the source participates in sync runs.
	Enabled bool `yaml:"enabled"`
}

// Validate reports a configuration error for a malformed source.
// Validation failures are fatal and abort a run before scanning begins.
func (s DataSource) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: source name is required", ErrInvalidSource)
	}
	if s.Path == "" {
		return fmt.Errorf("%w: source %q has no path", ErrInvalidSource, s.Name)
	}
	if len(s.Patterns) == 0 {
		return fmt.Errorf("%w: source %q has no file patterns", ErrInvalidSource, s.Name)
	}
	for _, p := range s.Patterns {
		if p == "" {
			return fmt.Errorf("%w: source %q has an empty pattern", ErrInvalidSource, s.Name)
		}
	}
	return nil
}

// WithDefaults returns a copy with Category and Priority filled in
// where the configuration left them unset.
func (s DataSource) WithDefaults() DataSource {
	if s.Category == "" {
		s.Category = DefaultCategory
	}
	if s.Priority == 0 {
		s.Priority = DefaultPriority
	}
	return s
}
