package geometry

// Thermoelectric module cross-section, dimensions in mm.
const (
	mm = 1e-3

	Legs = 18

	legWidth      = 1.397
	legGap        = 0.762
	connectorSpan = 3.556

	nodesCeramic = 50
	nodesAir     = 30
	nodesCopper  = 30
	nodesBiTe    = 30
)

var (
	ceramicBottom = Rect{X0: 0, Y0: 0.635, XF: 39.9796, YF: 0}
	ceramicTop    = Rect{X0: 0, Y0: 3.415, XF: 39.9796, YF: 2.78}

	airLeft  = Rect{X0: 0, Y0: 2.78, XF: 1.016, YF: 0.635}
	airRight = Rect{X0: 39.116, Y0: 2.77999, XF: 39.9796, YF: 0.635}

	copperFirstBottom = Rect{X0: 1.016, Y0: 1.0541, XF: 2.413, YF: 0.635}
	copperLastBottom  = Rect{X0: 37.719, Y0: 1.0541, XF: 39.116, YF: 0.635}
	copperBottom      = Rect{X0: 3.175, Y0: 1.0541, XF: 3.175 + connectorSpan, YF: 0.635}
	copperTop         = Rect{X0: 1.016, Y0: 2.7799, XF: 1.016 + connectorSpan, YF: 2.3749}

	leg = Rect{X0: 1.016, Y0: 2.3609, XF: 1.016 + legWidth, YF: 1.0541}

	airTop    = Rect{X0: 4.572, Y0: 2.78, XF: 4.572 + legGap, YF: 1.0541}
	airBottom = Rect{X0: 2.413, Y0: 2.3609, XF: 2.413 + legGap, YF: 0.635}
)

// TEM appends the module layout to b: both alumina plates, the edge air
// gaps, stub and arrayed copper connectors, the BiTe legs and the air gaps
// between legs.
func TEM(b *Builder, materials TEMMaterials) {
	connectorPitch := (connectorSpan + legGap) * mm
	legPitch := (legWidth + legGap) * mm

	b.Add(ceramicBottom.Scale(mm), materials.Plate, nodesCeramic)
	b.Add(ceramicTop.Scale(mm), materials.Plate, nodesCeramic)

	b.Add(airLeft.Scale(mm), materials.Gap, nodesAir)
	b.Add(airRight.Scale(mm), materials.Gap, nodesAir)

	b.Add(copperFirstBottom.Scale(mm), materials.Connector, nodesCopper)
	b.Add(copperLastBottom.Scale(mm), materials.Connector, nodesCopper)
	b.Array(copperBottom.Scale(mm), materials.Connector, nodesCopper, Legs/2-1, connectorPitch)
	b.Array(copperTop.Scale(mm), materials.Connector, nodesCopper, Legs/2, connectorPitch)

	b.Array(leg.Scale(mm), materials.Leg, nodesBiTe, Legs, legPitch)

	b.Array(airTop.Scale(mm), materials.Gap, nodesAir, Legs/2-1, 2*legPitch)
	b.Array(airBottom.Scale(mm), materials.Gap, nodesAir, Legs/2, 2*legPitch)
}

// TEMMaterials names the material of each part of the module.
type TEMMaterials struct {
	Plate     string
	Gap       string
	Connector string
	Leg       string
}

var DefaultTEMMaterials = TEMMaterials{
	Plate:     "Ceramic",
	Gap:       "Air",
	Connector: "Copper",
	Leg:       "BiTe",
}
