package scope

import (
	"sort"

	"insightval/internal/repository"
)

// domainPredicate matches either a profile field or, when tag is set, the tag
// index. Bonds often have no profile row, so the bond domain goes through tags.
type domainPredicate struct {
	field repository.ProfileField
	value string
	tag   string
}

var domains = map[string][]domainPredicate{
	"stock":   {{field: repository.ProfileKind, value: "stock"}},
	"fund":    {{field: repository.ProfileKind, value: "fund"}},
	"equity":  {{field: repository.ProfileKind, value: "stock"}, {field: repository.ProfileKind, value: "fund"}},
	"futures": {{field: repository.ProfileKind, value: "futures"}},
	"spot":    {{field: repository.ProfileKind, value: "spot"}},
	"forex": {
		{field: repository.ProfileKind, value: "forex"},
		{field: repository.ProfileAssetClass, value: "forex"},
	},
	"bond": {{tag: "bond"}},
}

// Domains lists the supported domain ids.
func Domains() []string {
	out := make([]string, 0, len(domains))
	for id := range domains {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func IsDomain(id string) bool {
	_, ok := domains[id]
	return ok
}
