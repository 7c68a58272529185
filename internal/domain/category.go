package domain

// Category is the standardized service classification derived from sub-type and reason.
type Category string

const (
	CategoryPrincipalPointTV    Category = "PONTO_PRINCIPAL_TV"
	CategoryPrincipalPointFiber Category = "PONTO_PRINCIPAL_FIBRA"
	CategoryTechAssistanceTV    Category = "ASSISTENCIA_TECNICA_TV"
	CategoryTechAssistanceFiber Category = "ASSISTENCIA_TECNICA_FIBRA"
	CategoryUnclassified        Category = "NAO_CLASSIFICADO"
)

// Segment splits categories into the two product lines.
type Segment string

const (
	SegmentTV    Segment = "TV"
	SegmentFiber Segment = "FIBRA"
)

// IsPrincipalPoint reports installation categories.
func (c Category) IsPrincipalPoint() bool {
	return c == CategoryPrincipalPointTV || c == CategoryPrincipalPointFiber
}

// IsTechAssistance reports repair categories.
func (c Category) IsTechAssistance() bool {
	return c == CategoryTechAssistanceTV || c == CategoryTechAssistanceFiber
}

// Segment maps the category onto its product line. Unclassified falls into TV.
func (c Category) Segment() Segment {
	if c == CategoryPrincipalPointFiber || c == CategoryTechAssistanceFiber {
		return SegmentFiber
	}
	return SegmentTV
}
