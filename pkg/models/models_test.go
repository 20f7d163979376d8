package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetKeepsInsertionOrder(t *testing.T) {
	s := NewSet("b", "a", "b", "c")

	assert.Equal(t, []string{"b", "a", "c"}, s.Members())
	assert.Equal(t, []string{"a", "b", "c"}, s.Sorted())
	assert.Equal(t, "a,b,c", s.Key())
	assert.False(t, s.Add("a"))
	assert.True(t, s.Add("d"))
	assert.Equal(t, 4, s.Len())
}

func TestSetOperations(t *testing.T) {
	a := NewSet("g1", "g2", "g3")
	b := NewSet("g3", "g4")

	assert.True(t, a.Intersects(b))
	assert.Equal(t, 1, a.IntersectionSize(b))
	assert.False(t, a.Intersects(NewSet("x")))
	assert.True(t, NewSet("g2", "g1").IsSubsetOf(a))
	assert.False(t, b.IsSubsetOf(a))
	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, a.Union(b).Members())

	clone := a.Clone()
	clone.Add("g9")
	assert.False(t, a.Has("g9"))
}

func TestNilSet(t *testing.T) {
	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("g1"))
}

func TestCohort(t *testing.T) {
	c := NewCohort()
	c.AddCase("C1", []string{"TP53", "KRAS", "TP53"})
	c.AddCase("C2", []string{"KRAS", "EGFR"})

	require.Equal(t, 2, c.Size())
	assert.Equal(t, []string{"TP53", "KRAS"}, c.Cases[0].Genes.Members())
	assert.Equal(t, []string{"TP53", "KRAS", "EGFR"}, c.Universe.Members())
}

func TestHubGenes(t *testing.T) {
	connectivity := Connectivity{"TP53": 120, "KRAS": 50, "BRAF": 49}

	tests := []struct {
		name   string
		cutoff int
		want   []string
	}{
		{"disabled", 0, []string{}},
		{"inclusive", 50, []string{"KRAS", "TP53"}},
		{"high", 121, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, connectivity.HubGenes(tt.cutoff).Sorted())
		})
	}
}

func TestPathwayReferenceBackground(t *testing.T) {
	r := NewPathwayReference()
	r.AddPathway("P1", []string{"a", "b"})
	r.AddPathway("P2", []string{"b", "c"})

	assert.Equal(t, 2, r.Size())
	assert.Equal(t, 3, r.Background.Len())
}

func TestClusterMerge(t *testing.T) {
	left := NewCluster([]string{"g2", "g1"}, []string{"C1"})
	right := NewCluster([]string{"g3", "g1"}, []string{"C2", "C1"})

	merged := left.Merge(right)
	assert.Equal(t, "g1,g2,g3", merged.Key())
	assert.Equal(t, []string{"C1", "C2"}, merged.Cases.Members())
	assert.Equal(t, "g1,g2", left.Key())
	assert.Equal(t, "Cluster{genes=g1,g2,g3 cases=C1,C2}", merged.String())
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "case.id", Message: "duplicate case ID", Value: "C1"},
		{Field: "case.genes", Message: "no genes"},
	}
	assert.Contains(t, errs.Error(), "2 validation errors")
	assert.Equal(t, "validation error in field 'case.genes': no genes", errs[1].Error())
}
