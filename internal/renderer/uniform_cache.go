package renderer

// UniformCache caches uniform locations so each name is looked up once per program.
type UniformCache struct {
	locations map[string]int32
	lookup    func(name string) int32
}

// NewUniformCache wraps the device's location query.
func NewUniformCache(lookup func(name string) int32) *UniformCache {
	return &UniformCache{
		locations: make(map[string]int32),
		lookup:    lookup,
	}
}

// GetLocation returns the cached location or queries and caches it. Missing
// uniforms are cached as -1.
func (uc *UniformCache) GetLocation(name string) int32 {
	if loc, exists := uc.locations[name]; exists {
		return loc
	}
	loc := uc.lookup(name)
	uc.locations[name] = loc
	return loc
}

func (uc *UniformCache) Len() int {
	return len(uc.locations)
}

// Clear empties the cache; call when the program is relinked.
func (uc *UniformCache) Clear() {
	uc.locations = make(map[string]int32)
}
