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

import (
	"fmt"
	"strconv"
	"strings"
)

// Body identifies a body accepted by Calc. Numbers follow the Swiss
// Ephemeris SE_* planet numbers.
type Body int

const (
	Sun        Body = 0
	Moon       Body = 1
	Mercury    Body = 2
	Venus      Body = 3
	Mars       Body = 4
	Jupiter    Body = 5
	Saturn     Body = 6
	Uranus     Body = 7
	Neptune    Body = 8
	Pluto      Body = 9
	MeanNode   Body = 10
	TrueNode   Body = 11
	MeanApogee Body = 12
	OscuApogee Body = 13
	Earth      Body = 14
	Chiron     Body = 15
	Pholus     Body = 16
	Ceres      Body = 17
	Pallas     Body = 18
	Juno       Body = 19
	Vesta      Body = 20

	// AstOffset + n is numbered minor planet n.
	AstOffset Body = 10000
)

var bodyNames = map[Body]string{
	Sun: "Sun", Moon: "Moon", Mercury: "Mercury", Venus: "Venus", Mars: "Mars",
	Jupiter: "Jupiter", Saturn: "Saturn", Uranus: "Uranus", Neptune: "Neptune",
	Pluto: "Pluto", MeanNode: "mean Node", TrueNode: "true Node",
	MeanApogee: "mean Apogee", OscuApogee: "osc. Apogee", Earth: "Earth",
	Chiron: "Chiron", Pholus: "Pholus", Ceres: "Ceres", Pallas: "Pallas",
	Juno: "Juno", Vesta: "Vesta",
}

// Asteroid returns the body of numbered minor planet n.
func Asteroid(n int) Body { return AstOffset + Body(n) }

// String returns the display label of b.
func (b Body) String() string {
	if n, ok := bodyNames[b]; ok {
		return n
	}
	if b > AstOffset {
		return fmt.Sprintf("asteroid %d", int(b-AstOffset))
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

// ParseBody accepts a body label (case-insensitive), a body number or
// "ast:N" for numbered minor planet N.
func ParseBody(s string) (Body, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "ast:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("bad asteroid number %q", rest)
		}
		return Asteroid(n), nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Body(n), nil
	}
	for b, name := range bodyNames {
		if strings.EqualFold(name, s) || strings.EqualFold(strings.ReplaceAll(name, " ", ""), s) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown body %q", s)
}

// Target is a raw state a Provider can evaluate.
type Target int

const (
	TargetSun Target = iota // solar system barycentric Sun
	TargetMercury
	TargetVenus
	TargetEMB
	TargetMars
	TargetJupiter
	TargetSaturn
	TargetUranus
	TargetNeptune
	TargetPluto
	TargetEarth
	TargetMoon
	TargetChiron
	TargetPholus
	TargetCeres
	TargetPallas
	TargetJuno
	TargetVesta

	// targetAstOffset + n is numbered minor planet n.
	targetAstOffset Target = 10000
)

var targetNames = [...]string{
	"Sun", "Mercury", "Venus", "EMB", "Mars", "Jupiter", "Saturn", "Uranus",
	"Neptune", "Pluto", "Earth", "Moon", "Chiron", "Pholus", "Ceres", "Pallas",
	"Juno", "Vesta",
}

// String implements fmt.Stringer.
func (t Target) String() string {
	if n, ok := t.Asteroid(); ok {
		return fmt.Sprintf("asteroid %d", n)
	}
	if t >= 0 && int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// Asteroid returns the minor planet number of a numbered-asteroid target.
func (t Target) Asteroid() (int, bool) {
	if t > targetAstOffset {
		return int(t - targetAstOffset), true
	}
	return 0, false
}

// lunarPoint selects one of the computed lunar orbit points.
type lunarPoint int

const (
	pointMeanNode lunarPoint = iota
	pointTrueNode
	pointMeanApogee
	pointOscuApogee
)

// bodyKind is the closed set of body variants. Each computes its own
// result through the engine.
type bodyKind interface {
	compute(e *Engine, req *request) (Result, error)
}

// physicalBody is a body with a raw state: Sun, Moon, Earth and the planets.
type physicalBody struct {
	body   Body
	target Target
}

// asteroidBody is a minor planet, stored heliocentrically by its source.
type asteroidBody struct {
	body   Body
	target Target
	number int // 0 for the named main-belt bodies and Centaurs
}

// lunarPointBody is a node or apside of the lunar orbit.
type lunarPointBody struct {
	body  Body
	point lunarPoint
}

var physicalTargets = map[Body]Target{
	Sun: TargetSun, Moon: TargetMoon, Mercury: TargetMercury, Venus: TargetVenus,
	Mars: TargetMars, Jupiter: TargetJupiter, Saturn: TargetSaturn,
	Uranus: TargetUranus, Neptune: TargetNeptune, Pluto: TargetPluto,
	Earth: TargetEarth,
}

var asteroidTargets = map[Body]Target{
	Chiron: TargetChiron, Pholus: TargetPholus, Ceres: TargetCeres,
	Pallas: TargetPallas, Juno: TargetJuno, Vesta: TargetVesta,
}

var lunarPoints = map[Body]lunarPoint{
	MeanNode: pointMeanNode, TrueNode: pointTrueNode,
	MeanApogee: pointMeanApogee, OscuApogee: pointOscuApogee,
}

// kindOfBody classifies b.
func kindOfBody(b Body) (bodyKind, error) {
	if t, ok := physicalTargets[b]; ok {
		return physicalBody{body: b, target: t}, nil
	}
	if t, ok := asteroidTargets[b]; ok {
		return asteroidBody{body: b, target: t}, nil
	}
	if p, ok := lunarPoints[b]; ok {
		return lunarPointBody{body: b, point: p}, nil
	}
	if b > AstOffset {
		n := int(b - AstOffset)
		return asteroidBody{body: b, target: targetAstOffset + Target(n), number: n}, nil
	}
	return nil, configError("calc", b, "illegal body number %d", int(b))
}
