package domain

import "time"

// Issue is a read-only projection of a tracker issue. Number is unique per
// repository only; hierarchy resolution never crosses repositories.
type Issue struct {
    Number    int
    Title     string
    URL       string
    Repo      string
    State     string
    Labels    []string
    ClosedAt  *time.Time
    UpdatedAt *time.Time
}

const (
    StateOpen   = "open"
    StateClosed = "closed"
)

const (
    TypeBug         = "bug"
    TypeEnhancement = "enhancement"
    TypeRequirement = "requirement"
    TypeTheme       = "theme"
    TypeTask        = "task"
    TypeUnknown     = "unknown"
)

// IssueTypes is the fixed, ordered list of recognized type labels. The order
// is the precedence contract: the first label on an issue that appears in
// this list wins, and planning reports concatenate per-type groups in this
// order.
var IssueTypes = []string{TypeBug, TypeEnhancement, TypeRequirement, TypeTheme, TypeTask}

// TopPriorities marks an issue as on deck for near-term work.
var TopPriorities = []string{"p.must-have", "s.high", "s.critical"}

// IgnoreLabels excludes an issue from every report.
var IgnoreLabels = []string{"wontfix", "duplicate", "invalid"}

// FetchedParent is a parent discovered through the parent-lookup endpoint
// whose number is absent from the issue list under resolution. It carries
// just enough for display and lives only for one resolution pass.
type FetchedParent struct {
    Number int
    Title  string
    URL    string
    State  string
}

// SubIssueRef is the minimal slice of a sub-issue payload the resolver needs.
type SubIssueRef struct {
    Number int
    Title  string
    URL    string
    State  string
}

// Hierarchy is the outcome of one resolution pass over a single repository's
// issue list. Every number appearing in Children's values is a member of
// ChildSet.
type Hierarchy struct {
    Children       map[int][]int
    ChildSet       map[int]struct{}
    FetchedParents map[int]FetchedParent
}

func NewHierarchy() Hierarchy {
    return Hierarchy{Children: map[int][]int{}, ChildSet: map[int]struct{}{}, FetchedParents: map[int]FetchedParent{}}
}

// IsChild reports whether n was linked under some parent in this pass.
func (h Hierarchy) IsChild(n int) bool { _, ok := h.ChildSet[n]; return ok }

// IsParent reports whether n has at least one linked child.
func (h Hierarchy) IsParent(n int) bool { _, ok := h.Children[n]; return ok }

// TypeCounts accumulates per-type issue counts plus a total for one metrics
// bucket (a repository or a component).
type TypeCounts struct {
    ByType map[string]int
    Total  int
}

func NewTypeCounts() *TypeCounts { return &TypeCounts{ByType: map[string]int{}} }

func (t *TypeCounts) Add(issueType string, n int) {
    t.ByType[issueType] += n
    t.Total += n
}

// Product is one entry of the components configuration.
type Product struct {
    Description  string   `yaml:"description"`
    Ignore       bool     `yaml:"ignore"`
    Repositories []string `yaml:"repositories"`
}

// ProductsConfig maps product name to its declaration.
type ProductsConfig struct {
    Products map[string]Product `yaml:"products"`
}
