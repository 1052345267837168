package astroeph

/*
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/

import "github.com/mshafiee/astroeph/astrometry"

// cacheKey strips the bits that only select the output representation.
func cacheKey(f Flag) Flag { return f &^ outputMask }

// cacheEntry is the last result computed for one body.
type cacheEntry struct {
	tjd    float64
	model  Model // 0 after a failure
	flags  Flag  // cacheKey of the request
	raw    astrometry.State
	result Result
	speed  bool
	valid  bool
}

// hit reports whether the entry can answer a request.
func (c *cacheEntry) hit(tjd float64, key Flag, speed bool) bool {
	return c.valid && c.tjd == tjd && c.flags == key && (c.speed || !speed)
}

// resultCache holds one entry per body.
type resultCache struct {
	entries map[Body]*cacheEntry
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[Body]*cacheEntry)}
}

func (c *resultCache) get(b Body) (*cacheEntry, bool) {
	ent, ok := c.entries[b]
	return ent, ok
}

func (c *resultCache) put(b Body, ent *cacheEntry) { c.entries[b] = ent }

// invalidate marks the entry of b as failed.
func (c *resultCache) invalidate(b Body) {
	if ent, ok := c.entries[b]; ok {
		ent.valid = false
		ent.model = 0
		ent.result = Result{}
	}
}

func (c *resultCache) invalidateAll() {
	for _, ent := range c.entries {
		ent.valid = false
		ent.model = 0
	}
}

// rawEntry is a saved provider state.
type rawEntry struct {
	tjd   float64
	model Model
	speed bool
	state astrometry.State
}

// rawCache keeps the last saved state of each target, so the Earth and the
// Sun are evaluated once per time step.
type rawCache struct {
	slots map[Target]rawEntry
}

func newRawCache() *rawCache {
	return &rawCache{slots: make(map[Target]rawEntry)}
}

func (c *rawCache) get(t Target, tjd float64, m Model, speed bool) (astrometry.State, bool) {
	s, ok := c.slots[t]
	if !ok || s.tjd != tjd || s.model != m || (speed && !s.speed) {
		return astrometry.State{}, false
	}
	return s.state, true
}

func (c *rawCache) put(t Target, tjd float64, m Model, speed bool, st astrometry.State) {
	c.slots[t] = rawEntry{tjd: tjd, model: m, speed: speed, state: st}
}

func (c *rawCache) reset() { clear(c.slots) }

// rawState evaluates t with p. Saved evaluations are served from and stored
// in the raw cache.
func (e *Engine) rawState(p Provider, tjd float64, t Target, speed, save bool) (astrometry.State, error) {
	m := p.Model()
	if save {
		if st, ok := e.raw.get(t, tjd, m, speed); ok {
			return st, nil
		}
	}
	e.metrics.ProviderCall(m.String())
	st, err := p.State(tjd, t, speed)
	if err != nil {
		return astrometry.State{}, err
	}
	if save {
		e.raw.put(t, tjd, m, speed, st)
	}
	return st, nil
}
