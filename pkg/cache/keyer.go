package cache

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey identifies a placed diagram of the model with hash modelHash.
	LayoutKey(modelHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output of the layout with hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	Strategy    string  `json:"strategy"`
	Margin      float64 `json:"margin"`
	Recenter    bool    `json:"recenter"`
	MaxRowWidth float64 `json:"max_row_width"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Border     bool    `json:"border"`
	NamesOnly  bool    `json:"names_only"`
	Standalone bool    `json:"standalone"`
	Graphviz   bool    `json:"graphviz"`
	Scale      float64 `json:"scale"`
}

// DefaultKeyer builds keys of the form "<stage>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey hashes the model hash together with the layout options.
func (DefaultKeyer) LayoutKey(modelHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", modelHash, opts)
}

// ArtifactKey hashes the layout hash together with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
