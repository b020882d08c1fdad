package trace

import "testing"

func TestSummarize_CountsKinds(t *testing.T) {
	tr := New()
	recs := []Record{
		{Step: 1, Time: 0.1, Kind: "create_divacancy"},
		{Step: 2, Time: 0.3, Kind: "create_divacancy"},
		{Step: 3, Time: 0.35, Kind: "form_trefoil"},
		{Step: 4, Time: 0.9, Kind: "migrate_divacancy"},
	}
	for _, rec := range recs {
		if err := tr.Append(rec); err != nil {
			t.Fatal(err)
		}
	}

	s := Summarize(tr)
	if s.Steps != 4 || s.FinalTime != 0.9 {
		t.Errorf("summary = %+v, want 4 steps ending at t=0.9", s)
	}
	want := map[string]int{"create_divacancy": 2, "form_trefoil": 1, "migrate_divacancy": 1}
	for kind, n := range want {
		if s.KindCounts[kind] != n {
			t.Errorf("count[%s] = %d, want %d", kind, s.KindCounts[kind], n)
		}
	}
}

func TestSummarize_NilAndEmpty(t *testing.T) {
	for _, tr := range []*Trace{nil, New()} {
		s := Summarize(tr)
		if s.Steps != 0 || s.FinalTime != 0 || len(s.KindCounts) != 0 {
			t.Errorf("summary of empty trace = %+v", s)
		}
	}
}
