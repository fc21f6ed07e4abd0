package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys from render inputs.
type Keyer interface {
	// SceneKey identifies a composed poster (configuration + seed).
	SceneKey(seed uint64, config any) string

	// ArtifactKey identifies one encoded output of a scene.
	ArtifactKey(sceneKey string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the output options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	DPI        float64 `json:"dpi,omitempty"`
	Thumbnail  int     `json:"thumbnail,omitempty"`
	EmbedFonts bool    `json:"embed_fonts,omitempty"`
}

// DefaultKeyer hashes inputs into "scene:<sha256>" and "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SceneKey(seed uint64, config any) string {
	return hashKey("scene", seed, config)
}

func (DefaultKeyer) ArtifactKey(sceneKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneKey, opts)
}

// ScopedKeyer prefixes every key of an inner Keyer so several deployments
// can share one Redis without colliding:
//
//	keyer := NewScopedKeyer(nil, "wobble:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SceneKey(seed uint64, config any) string {
	return k.prefix + k.inner.SceneKey(seed, config)
}

func (k *ScopedKeyer) ArtifactKey(sceneKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneKey, opts)
}

// hashKey returns prefix + ":" + the SHA-256 of the JSON-encoded parts.
// Config values are plain structs, so the encoding is stable.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
