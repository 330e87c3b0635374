package queryir

// Field identifies a known predicate field.
type Field int

const (
	FieldDynamic Field = iota // unrecognized key, see FieldRef.Name
	FieldKeyword
	FieldNumber
	FieldTitle
	FieldAuthor
	FieldAssignee
	FieldMilestone
	FieldUser
	FieldRepo
	FieldLabel
	FieldInvolves
	FieldMentions
	FieldTeam
	FieldReviewRequested
	FieldReviewedBy
	FieldProjectName
	FieldProjectColumn
	FieldProjectField
	FieldIs
	FieldNo
	FieldHave
	FieldSort
)

var fieldNames = map[Field]string{
	FieldDynamic:         "dynamic",
	FieldKeyword:         "keyword",
	FieldNumber:          "number",
	FieldTitle:           "title",
	FieldAuthor:          "author",
	FieldAssignee:        "assignee",
	FieldMilestone:       "milestone",
	FieldUser:            "user",
	FieldRepo:            "repo",
	FieldLabel:           "label",
	FieldInvolves:        "involves",
	FieldMentions:        "mentions",
	FieldTeam:            "team",
	FieldReviewRequested: "review-requested",
	FieldReviewedBy:      "reviewed-by",
	FieldProjectName:     "project-name",
	FieldProjectColumn:   "project-column",
	FieldProjectField:    "project-field",
	FieldIs:              "is",
	FieldNo:              "no",
	FieldHave:            "have",
	FieldSort:            "sort",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// FieldRef is a tagged variant: either a known Field, or a dynamic field
// named after the key that could not be classified.
type FieldRef struct {
	Known Field
	Name  string // set only when Known == FieldDynamic
}

// IsDynamic reports whether the reference names an unclassified key.
func (r FieldRef) IsDynamic() bool {
	return r.Known == FieldDynamic
}

func (r FieldRef) String() string {
	if r.IsDynamic() {
		return r.Name
	}
	return r.Known.String()
}

// DynamicValue is one key:value pair whose key has no mapping.
// Dynamic values are stored but never compiled.
type DynamicValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Flags is a set of open-ended flag names (is:open, no:label, ...).
// Presence means true.
type Flags map[string]bool

// Set records the flag.
func (f Flags) Set(name string) {
	f[name] = true
}

// Has reports whether the flag was recorded.
func (f Flags) Has(name string) bool {
	return f[name]
}

// PredicateSet is the collection of typed clauses extracted from one
// polarity of a query. List order follows token order.
type PredicateSet struct {
	Keywords        []string `json:"keywords,omitempty"`
	Numbers         []string `json:"numbers,omitempty"`
	Titles          []string `json:"titles,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	Assignees       []string `json:"assignees,omitempty"`
	Milestones      []string `json:"milestones,omitempty"`
	Users           []string `json:"users,omitempty"`
	Repos           []string `json:"repos,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	Involves        []string `json:"involves,omitempty"`
	Mentions        []string `json:"mentions,omitempty"`
	Teams           []string `json:"teams,omitempty"`
	ReviewRequested []string `json:"review_requested,omitempty"`
	ReviewedBy      []string `json:"reviewed_by,omitempty"`
	ProjectNames    []string `json:"project_names,omitempty"`
	ProjectColumns  []string `json:"project_columns,omitempty"`
	ProjectFields   []string `json:"project_fields,omitempty"`

	Is   Flags `json:"is,omitempty"`
	No   Flags `json:"no,omitempty"`
	Have Flags `json:"have,omitempty"`

	// Sort is only ever set on the affirmed set.
	Sort string `json:"sort,omitempty"`

	Dynamic []DynamicValue `json:"dynamic,omitempty"`
}

// NewPredicateSet returns an empty set with initialized flag maps.
func NewPredicateSet() *PredicateSet {
	return &PredicateSet{
		Is:   Flags{},
		No:   Flags{},
		Have: Flags{},
	}
}

// Append adds value to the list backing field. Flag fields, sort and
// dynamic references are not lists and are rejected with false.
func (s *PredicateSet) Append(f Field, value string) bool {
	list := s.list(f)
	if list == nil {
		return false
	}
	*list = append(*list, value)
	return true
}

// Values returns the list backing field, or nil for non-list fields.
func (s *PredicateSet) Values(f Field) []string {
	list := s.list(f)
	if list == nil {
		return nil
	}
	return *list
}

// DynamicValues returns the values recorded for an unclassified key.
func (s *PredicateSet) DynamicValues(key string) []string {
	var values []string
	for _, dv := range s.Dynamic {
		if dv.Key == key {
			values = append(values, dv.Value)
		}
	}
	return values
}

func (s *PredicateSet) list(f Field) *[]string {
	switch f {
	case FieldKeyword:
		return &s.Keywords
	case FieldNumber:
		return &s.Numbers
	case FieldTitle:
		return &s.Titles
	case FieldAuthor:
		return &s.Authors
	case FieldAssignee:
		return &s.Assignees
	case FieldMilestone:
		return &s.Milestones
	case FieldUser:
		return &s.Users
	case FieldRepo:
		return &s.Repos
	case FieldLabel:
		return &s.Labels
	case FieldInvolves:
		return &s.Involves
	case FieldMentions:
		return &s.Mentions
	case FieldTeam:
		return &s.Teams
	case FieldReviewRequested:
		return &s.ReviewRequested
	case FieldReviewedBy:
		return &s.ReviewedBy
	case FieldProjectName:
		return &s.ProjectNames
	case FieldProjectColumn:
		return &s.ProjectColumns
	case FieldProjectField:
		return &s.ProjectFields
	default:
		return nil
	}
}

// Query is the result of classifying a token stream.
type Query struct {
	Affirmed *PredicateSet `json:"affirmed"`
	Negated  *PredicateSet `json:"negated"`

	// Diagnostics lists tokens that were accepted but ignored or
	// reinterpreted. They never influence compilation.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// NewQuery returns a Query with two empty predicate sets.
func NewQuery() *Query {
	return &Query{
		Affirmed: NewPredicateSet(),
		Negated:  NewPredicateSet(),
	}
}
