// Package voice resolves narration-voice expressions against a fixed
// registry and tracks the active voice across chapter boundaries.
package voice

import "strings"

// Registry maps voice identifiers to their canonical registry form.
// Lookups are case-insensitive.
type Registry struct {
	canonical map[string]string
}

// NewRegistry creates a registry from a list of canonical identifiers.
func NewRegistry(ids ...string) *Registry {
	r := &Registry{canonical: make(map[string]string, len(ids))}
	for _, id := range ids {
		r.canonical[strings.ToLower(id)] = id
	}
	return r
}

// DefaultRegistry returns the registry of voices shipped with the Kokoro
// engine. Identifiers follow the <lang><gender>_<name> convention.
func DefaultRegistry() *Registry {
	return NewRegistry(
		// American English
		"af_alloy", "af_aoede", "af_bella", "af_heart", "af_jessica",
		"af_kore", "af_nicole", "af_nova", "af_river", "af_sarah", "af_sky",
		"am_adam", "am_echo", "am_eric", "am_fenrir", "am_liam",
		"am_michael", "am_onyx", "am_puck", "am_santa",
		// British English
		"bf_alice", "bf_emma", "bf_isabella", "bf_lily",
		"bm_daniel", "bm_fable", "bm_george", "bm_lewis",
		// Spanish
		"ef_dora", "em_alex", "em_santa",
		// French
		"ff_siwis",
		// Italian
		"if_sara", "im_nicola",
		// Japanese
		"jf_alpha", "jf_gongitsune", "jm_kumo",
		// Portuguese
		"pf_dora", "pm_alex", "pm_santa",
		// Mandarin
		"zf_xiaobei", "zf_xiaoni", "zm_yunjian", "zm_yunxi",
		// Hindi
		"hf_alpha", "hf_beta", "hm_omega", "hm_psi",
	)
}

// Resolve returns the canonical form of an identifier and whether it is
// registered.
func (r *Registry) Resolve(id string) (string, bool) {
	c, ok := r.canonical[strings.ToLower(strings.TrimSpace(id))]
	return c, ok
}

// Contains reports whether the identifier is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.Resolve(id)
	return ok
}

// Len returns the number of registered voices.
func (r *Registry) Len() int {
	return len(r.canonical)
}
