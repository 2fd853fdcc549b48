package models

// TimeKind records how the wall clock of an Instant relates to UTC.
type TimeKind uint8

const (
	// Unspecified: the text carried no offset; the wall clock is kept as
	// written and is not tied to any zone.
	Unspecified TimeKind = iota
	// UTC: the text carried Z or a zero offset.
	UTC
	// Local: the text carried a non-zero offset and the moment was
	// converted to the local zone.
	Local
)

func (k TimeKind) String() string {
	switch k {
	case UTC:
		return "utc"
	case Local:
		return "local"
	default:
		return "unspecified"
	}
}
