package building

import "fmt"

// WallMaterial is an integer enum of wall constructions.
type WallMaterial int

const (
	WallUnknown WallMaterial = iota
	WoodFrameInsulated16Inch
	WoodFrameInsulated24Inch
	MasonryVeneer4InchFaceBrick
	InsulatedConcreteMasonry8Inch
	StructuralInsulatedPanel
)

func (m WallMaterial) Valid() bool {
	return m >= WoodFrameInsulated16Inch && m <= StructuralInsulatedPanel
}

// UValue returns the thermal transmittance in W/(m^2*K), 0 for an invalid variant.
func (m WallMaterial) UValue() float64 {
	switch m {
	case WoodFrameInsulated16Inch:
		return 0.064
	case WoodFrameInsulated24Inch:
		return 0.045
	case MasonryVeneer4InchFaceBrick:
		return 0.078
	case InsulatedConcreteMasonry8Inch:
		return 0.051
	case StructuralInsulatedPanel:
		return 0.037
	default:
		return 0
	}
}

func (m WallMaterial) String() string {
	switch m {
	case WoodFrameInsulated16Inch:
		return "wood_frame_insulated_16in"
	case WoodFrameInsulated24Inch:
		return "wood_frame_insulated_24in"
	case MasonryVeneer4InchFaceBrick:
		return "masonry_veneer_4in_face_brick"
	case InsulatedConcreteMasonry8Inch:
		return "insulated_concrete_masonry_8in"
	case StructuralInsulatedPanel:
		return "structural_insulated_panel"
	default:
		return "unknown"
	}
}

func ParseWallMaterial(s string) (WallMaterial, error) {
	for _, m := range WallMaterials() {
		if m.String() == s {
			return m, nil
		}
	}
	return WallUnknown, fmt.Errorf("%w: wall %q", ErrInvalidMaterial, s)
}

// WallMaterials lists every wall variant in declaration order.
func WallMaterials() []WallMaterial {
	return []WallMaterial{
		WoodFrameInsulated16Inch,
		WoodFrameInsulated24Inch,
		MasonryVeneer4InchFaceBrick,
		InsulatedConcreteMasonry8Inch,
		StructuralInsulatedPanel,
	}
}

// RoofMaterial is an integer enum of roof constructions.
type RoofMaterial int

const (
	RoofUnknown RoofMaterial = iota
	AsphaltShingles
	MetalRoof
	TileRoof
	BuiltUpRoofingInsulatedDeck
	InsulatedStructuralPanel
)

func (m RoofMaterial) Valid() bool {
	return m >= AsphaltShingles && m <= InsulatedStructuralPanel
}

func (m RoofMaterial) UValue() float64 {
	switch m {
	case AsphaltShingles:
		return 0.035
	case MetalRoof:
		return 0.028
	case TileRoof:
		return 0.040
	case BuiltUpRoofingInsulatedDeck:
		return 0.033
	case InsulatedStructuralPanel:
		return 0.037
	default:
		return 0
	}
}

func (m RoofMaterial) String() string {
	switch m {
	case AsphaltShingles:
		return "asphalt_shingles"
	case MetalRoof:
		return "metal_roof"
	case TileRoof:
		return "tile_roof"
	case BuiltUpRoofingInsulatedDeck:
		return "built_up_roofing_insulated_deck"
	case InsulatedStructuralPanel:
		return "insulated_structural_panel"
	default:
		return "unknown"
	}
}

func ParseRoofMaterial(s string) (RoofMaterial, error) {
	for _, m := range RoofMaterials() {
		if m.String() == s {
			return m, nil
		}
	}
	return RoofUnknown, fmt.Errorf("%w: roof %q", ErrInvalidMaterial, s)
}

func RoofMaterials() []RoofMaterial {
	return []RoofMaterial{
		AsphaltShingles,
		MetalRoof,
		TileRoof,
		BuiltUpRoofingInsulatedDeck,
		InsulatedStructuralPanel,
	}
}

// WindowMaterial is an integer enum of glazing types.
type WindowMaterial int

const (
	WindowUnknown WindowMaterial = iota
	SinglePaneGlass
	DoublePaneGlassAirFilled
	DoublePaneGlassArgonFilled
	TriplePaneGlassArgonFilled
	LowEDoublePane
)

func (m WindowMaterial) Valid() bool {
	return m >= SinglePaneGlass && m <= LowEDoublePane
}

func (m WindowMaterial) UValue() float64 {
	switch m {
	case SinglePaneGlass:
		return 0.90
	case DoublePaneGlassAirFilled:
		return 0.35
	case DoublePaneGlassArgonFilled:
		return 0.30
	case TriplePaneGlassArgonFilled:
		return 0.20
	case LowEDoublePane:
		return 0.25
	default:
		return 0
	}
}

func (m WindowMaterial) String() string {
	switch m {
	case SinglePaneGlass:
		return "single_pane_glass"
	case DoublePaneGlassAirFilled:
		return "double_pane_glass_air_filled"
	case DoublePaneGlassArgonFilled:
		return "double_pane_glass_argon_filled"
	case TriplePaneGlassArgonFilled:
		return "triple_pane_glass_argon_filled"
	case LowEDoublePane:
		return "low_e_double_pane"
	default:
		return "unknown"
	}
}

func ParseWindowMaterial(s string) (WindowMaterial, error) {
	for _, m := range WindowMaterials() {
		if m.String() == s {
			return m, nil
		}
	}
	return WindowUnknown, fmt.Errorf("%w: window %q", ErrInvalidMaterial, s)
}

func WindowMaterials() []WindowMaterial {
	return []WindowMaterial{
		SinglePaneGlass,
		DoublePaneGlassAirFilled,
		DoublePaneGlassArgonFilled,
		TriplePaneGlassArgonFilled,
		LowEDoublePane,
	}
}
