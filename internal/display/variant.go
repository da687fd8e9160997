package display

// Variant names a fixed presentation of the public invitation page.
type Variant string

const (
	VariantBirthday       Variant = "birthday"
	VariantWedding        Variant = "wedding"
	VariantWeddingClassic Variant = "wedding-classic"
	VariantIslamicWedding Variant = "islamic-wedding"
	VariantMoviePremiere  Variant = "movie-premiere"
)

const MsgUnsupported = "A visual design has not been created for this invitation type yet."

// keyed by template id; ids 3 and 4 never got a design
var variants = map[uint]Variant{
	1: VariantBirthday,
	2: VariantWedding,
	5: VariantWeddingClassic,
	6: VariantIslamicWedding,
	7: VariantMoviePremiere,
}

// VariantFor reports the presentation for a template id.
func VariantFor(templateID uint) (Variant, bool) {
	v, ok := variants[templateID]
	return v, ok
}
