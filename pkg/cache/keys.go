package cache

// Keyer builds cache keys. Implementations must be deterministic: the same
// inputs always produce the same key.
type Keyer interface {
	// LayoutKey identifies the lane layout of a trace.
	LayoutKey(traceHash string) string

	// AtlasKey identifies the page manifests of a pack.
	AtlasKey(sourcesHash string, opts AtlasKeyOpts) string

	// ArtifactKey identifies one rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// AtlasKeyOpts are the pack settings that change the packed result.
type AtlasKeyOpts struct {
	PageWidth  int `json:"page_width"`
	PageHeight int `json:"page_height"`
	Shards     int `json:"shards"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	VizType    string  `json:"viz_type"`
	Format     string  `json:"format"`
	Width      float64 `json:"width"`
	PxPerMS    float64 `json:"px_per_ms"`
	BarHeight  float64 `json:"bar_height"`
	BarXGutter float64 `json:"bar_x_gutter"`
	BarYGutter float64 `json:"bar_y_gutter"`
	Labels     bool    `json:"labels"`
	PNGScale   float64 `json:"png_scale,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(traceHash string) string {
	return hashKey("layout", traceHash)
}

// AtlasKey returns "atlas:<hash>".
func (DefaultKeyer) AtlasKey(sourcesHash string, opts AtlasKeyOpts) string {
	return hashKey("atlas", sourcesHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
