// Package models holds the data types shared by every stage of the
// clustering pipeline: cases, network edges, pathways and clusters.
package models

import (
	"fmt"
	"sort"
	"strings"
)

// Set is an insertion-ordered set of identifiers. Iteration order is the
// order in which members were first added, which keeps every scan that
// walks a Set reproducible.
type Set struct {
	order []string
	index map[string]struct{}
}

// NewSet creates a set from the given members, keeping first occurrences
func NewSet(members ...string) *Set {
	s := &Set{
		order: make([]string, 0, len(members)),
		index: make(map[string]struct{}, len(members)),
	}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Add inserts a member and reports whether it was new
func (s *Set) Add(member string) bool {
	if _, exists := s.index[member]; exists {
		return false
	}
	s.index[member] = struct{}{}
	s.order = append(s.order, member)
	return true
}

// Has reports membership
func (s *Set) Has(member string) bool {
	if s == nil {
		return false
	}
	_, exists := s.index[member]
	return exists
}

// Len returns the number of members
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Members returns the members in insertion order. The slice must not be modified.
func (s *Set) Members() []string {
	return s.order
}

// Sorted returns a sorted copy of the members
func (s *Set) Sorted() []string {
	sorted := make([]string, len(s.order))
	copy(sorted, s.order)
	sort.Strings(sorted)
	return sorted
}

// Key returns the canonical form of the set: members sorted ascending and comma-joined
func (s *Set) Key() string {
	return strings.Join(s.Sorted(), ",")
}

// Intersects reports whether the two sets share at least one member
func (s *Set) Intersects(other *Set) bool {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for _, m := range small.order {
		if large.Has(m) {
			return true
		}
	}
	return false
}

// IntersectionSize counts the members present in both sets
func (s *Set) IntersectionSize(other *Set) int {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	count := 0
	for _, m := range small.order {
		if large.Has(m) {
			count++
		}
	}
	return count
}

// IsSubsetOf reports whether every member of s is in other
func (s *Set) IsSubsetOf(other *Set) bool {
	if s.Len() > other.Len() {
		return false
	}
	for _, m := range s.order {
		if !other.Has(m) {
			return false
		}
	}
	return true
}

// Union returns a new set holding the members of s followed by the new members of other
func (s *Set) Union(other *Set) *Set {
	u := NewSet(s.order...)
	for _, m := range other.order {
		u.Add(m)
	}
	return u
}

// Clone returns an independent copy
func (s *Set) Clone() *Set {
	return NewSet(s.order...)
}

// Case is a cohort member with its mutated genes
type Case struct {
	ID    string `json:"id"`
	Genes *Set   `json:"-"`
}

// Cohort is the ordered list of cases as read from the case gene list
type Cohort struct {
	Cases    []Case
	Universe *Set // union of every case's genes
}

// NewCohort creates an empty cohort
func NewCohort() *Cohort {
	return &Cohort{
		Cases:    make([]Case, 0),
		Universe: NewSet(),
	}
}

// AddCase appends a case and extends the gene universe
func (c *Cohort) AddCase(id string, genes []string) {
	set := NewSet(genes...)
	c.Cases = append(c.Cases, Case{ID: id, Genes: set})
	for _, g := range set.Members() {
		c.Universe.Add(g)
	}
}

// Size returns the number of cases
func (c *Cohort) Size() int {
	return len(c.Cases)
}

// Edge is a weighted interaction between two genes
type Edge struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Weight float64 `json:"weight"`
}

// Connectivity maps a gene to its interaction count in the reference network
type Connectivity map[string]int

// HubGenes returns the genes whose connectivity meets or exceeds cutoff.
// A cutoff of 0 disables hub detection and yields an empty set.
func (c Connectivity) HubGenes(cutoff int) *Set {
	hubs := NewSet()
	if cutoff == 0 {
		return hubs
	}
	genes := make([]string, 0, len(c))
	for gene := range c {
		genes = append(genes, gene)
	}
	sort.Strings(genes)
	for _, gene := range genes {
		if c[gene] >= cutoff {
			hubs.Add(gene)
		}
	}
	return hubs
}

// Pathway is a curated reference gene set
type Pathway struct {
	ID    string `json:"id"`
	Genes *Set   `json:"-"`
}

// PathwayReference holds every pathway in file order together with the
// background universe used by the enrichment test
type PathwayReference struct {
	Pathways   []Pathway
	Background *Set // union of all pathway genes
}

// NewPathwayReference creates an empty reference
func NewPathwayReference() *PathwayReference {
	return &PathwayReference{
		Pathways:   make([]Pathway, 0),
		Background: NewSet(),
	}
}

// AddPathway appends a pathway and extends the background universe
func (r *PathwayReference) AddPathway(id string, genes []string) {
	set := NewSet(genes...)
	r.Pathways = append(r.Pathways, Pathway{ID: id, Genes: set})
	for _, g := range set.Members() {
		r.Background.Add(g)
	}
}

// Size returns the number of pathways
func (r *PathwayReference) Size() int {
	return len(r.Pathways)
}

// Cluster is a (gene set, case set) pair describing a shared-mechanism hypothesis
type Cluster struct {
	Genes *Set
	Cases *Set
}

// NewCluster creates a cluster from gene and case members
func NewCluster(genes, cases []string) *Cluster {
	return &Cluster{Genes: NewSet(genes...), Cases: NewSet(cases...)}
}

// Key returns the deduplication key of the cluster (its canonical gene set)
func (c *Cluster) Key() string {
	return c.Genes.Key()
}

// Merge returns a new cluster holding the union of both gene and case sets
func (c *Cluster) Merge(other *Cluster) *Cluster {
	return &Cluster{
		Genes: c.Genes.Union(other.Genes),
		Cases: c.Cases.Union(other.Cases),
	}
}

func (c *Cluster) String() string {
	return fmt.Sprintf("Cluster{genes=%s cases=%s}", c.Genes.Key(), c.Cases.Key())
}

// ValidationError represents structured validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	if ve.Value != "" {
		return fmt.Sprintf("validation error in field '%s': %s (value: %s)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(ve), ve[0].Error(), len(ve)-1)
}
