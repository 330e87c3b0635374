package querysql

// flagRule maps a flag name to a fixed comparison and its logical inverse.
type flagRule struct {
	name     string
	affirmed string
	negated  string
}

// isRules lists the is: flags. Slice order fixes SQL output order.
var isRules = []flagRule{
	{"issue", "type = 'issue'", "type != 'issue'"},
	{"pr", "type = 'pr'", "type != 'pr'"},
	{"open", "closed_at is null", "closed_at is not null"},
	{"closed", "closed_at is not null", "closed_at is null"},
	{"read", "(read_at is not null and read_at >= updated_at)", "(read_at is null or read_at < updated_at)"},
	{"unread", "(read_at is null or read_at < updated_at)", "(read_at is not null and read_at >= updated_at)"},
	{"bookmark", "marked_at is not null", "marked_at is null"},
	{"unbookmark", "marked_at is null", "marked_at is not null"},
	{"archived", "archived_at is not null", "archived_at is null"},
	{"unarchived", "archived_at is null", "archived_at is not null"},
	{"merged", "merged_at is not null", "merged_at is null"},
	{"unmerged", "merged_at is null", "merged_at is not null"},
	{"draft", "draft = 1", "draft = 0"},
	{"undraft", "draft = 0", "draft = 1"},
	{"private", "repo_private = 1", "repo_private = 0"},
	{"public", "repo_private = 0", "repo_private = 1"},
}

// presenceColumns maps no:/have: flag names to the column they test.
var presenceColumns = []struct {
	name   string
	column string
}{
	{"label", "labels"},
	{"milestone", "milestone"},
	{"assignee", "assignees"},
	{"dueon", "due_on"},
	{"project", "project_names"},
}

var (
	noRules   = presenceRules(true)
	haveRules = presenceRules(false)
)

func presenceRules(missing bool) []flagRule {
	rules := make([]flagRule, 0, len(presenceColumns))
	for _, pc := range presenceColumns {
		isNull := pc.column + " is null"
		notNull := pc.column + " is not null"
		if missing {
			rules = append(rules, flagRule{pc.name, isNull, notNull})
		} else {
			rules = append(rules, flagRule{pc.name, notNull, isNull})
		}
	}
	return rules
}

func knownFlag(rules []flagRule, name string) bool {
	for _, r := range rules {
		if r.name == name {
			return true
		}
	}
	return false
}
