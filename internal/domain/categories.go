package domain

import "fmt"

// AnalyzedCategory is the waste type inferred by the vision classifier.
type AnalyzedCategory string

const (
	AnalyzedCompost   AnalyzedCategory = "compost"
	AnalyzedRecyclage AnalyzedCategory = "recyclage"
	AnalyzedPoubelle  AnalyzedCategory = "poubelle"
	AnalyzedAutre     AnalyzedCategory = "autre"
	AnalyzedErreur    AnalyzedCategory = "erreur"
)

// BinCategory is the bin the user actually discarded the item into.
type BinCategory string

const (
	BinCompost   BinCategory = "compost"
	BinRecyclage BinCategory = "recyclage"
	BinPoubelle  BinCategory = "poubelle"
	BinAutre     BinCategory = "autre"
)

// AnalyzedCategories lists every valid classifier output.
func AnalyzedCategories() []AnalyzedCategory {
	return []AnalyzedCategory{AnalyzedCompost, AnalyzedRecyclage, AnalyzedPoubelle, AnalyzedAutre, AnalyzedErreur}
}

// BinCategories lists every valid disposal bin.
func BinCategories() []BinCategory {
	return []BinCategory{BinCompost, BinRecyclage, BinPoubelle, BinAutre}
}

func (c AnalyzedCategory) Valid() bool {
	switch c {
	case AnalyzedCompost, AnalyzedRecyclage, AnalyzedPoubelle, AnalyzedAutre, AnalyzedErreur:
		return true
	}
	return false
}

func (c BinCategory) Valid() bool {
	switch c {
	case BinCompost, BinRecyclage, BinPoubelle, BinAutre:
		return true
	}
	return false
}

// ParseAnalyzedCategory validates a raw category string from the wire.
func ParseAnalyzedCategory(s string) (AnalyzedCategory, error) {
	c := AnalyzedCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid analyzed category %q", s)
	}
	return c, nil
}

// ParseBinCategory validates a raw bin string from the wire.
func ParseBinCategory(s string) (BinCategory, error) {
	c := BinCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid bin category %q", s)
	}
	return c, nil
}

// BinFor maps a classifier category onto the bin the item belongs in.
// "erreur" has no bin; ok is false in that case.
func BinFor(c AnalyzedCategory) (BinCategory, bool) {
	switch c {
	case AnalyzedCompost:
		return BinCompost, true
	case AnalyzedRecyclage:
		return BinRecyclage, true
	case AnalyzedPoubelle:
		return BinPoubelle, true
	case AnalyzedAutre:
		return BinAutre, true
	default:
		return "", false
	}
}
