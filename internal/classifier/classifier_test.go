package classifier

import (
	"testing"

	"binsight/internal/domain"
)

func TestCategoryFromAnswer(t *testing.T) {
	cases := []struct {
		answer string
		want   domain.AnalyzedCategory
	}{
		{"compost", domain.AnalyzedCompost},
		{"Recyclage", domain.AnalyzedRecyclage},
		{"C'est du recyclage.", domain.AnalyzedRecyclage},
		{"poubelle\n", domain.AnalyzedPoubelle},
		{"autre", domain.AnalyzedAutre},
		{"je ne sais pas", domain.AnalyzedErreur},
		{"", domain.AnalyzedErreur},
	}
	for _, c := range cases {
		if got := CategoryFromAnswer(c.answer); got != c.want {
			t.Errorf("CategoryFromAnswer(%q) = %q, want %q", c.answer, got, c.want)
		}
	}
}
