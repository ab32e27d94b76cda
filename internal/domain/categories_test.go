package domain

import "testing"

func TestBinFor(t *testing.T) {
	cases := []struct {
		in    AnalyzedCategory
		want  BinCategory
		hasOK bool
	}{
		{AnalyzedCompost, BinCompost, true},
		{AnalyzedRecyclage, BinRecyclage, true},
		{AnalyzedPoubelle, BinPoubelle, true},
		{AnalyzedAutre, BinAutre, true},
		{AnalyzedErreur, "", false},
		{AnalyzedCategory("verre"), "", false},
	}
	for _, c := range cases {
		got, ok := BinFor(c.in)
		if got != c.want || ok != c.hasOK {
			t.Errorf("BinFor(%q) = %q,%v; want %q,%v", c.in, got, ok, c.want, c.hasOK)
		}
	}
}

func TestParseCategories(t *testing.T) {
	if _, err := ParseAnalyzedCategory("erreur"); err != nil {
		t.Errorf("erreur should parse as analyzed category: %v", err)
	}
	if _, err := ParseBinCategory("erreur"); err == nil {
		t.Errorf("erreur must not parse as bin category")
	}
	if _, err := ParseAnalyzedCategory("Compost"); err == nil {
		t.Errorf("categories are lowercase only")
	}
	if _, err := ParseBinCategory(""); err == nil {
		t.Errorf("empty bin category must not parse")
	}
}
