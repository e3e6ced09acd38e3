package contracts

import "github.com/kingrea/modpatch/internal/content"

// Contract describes one edit group of a replace specification: the key it
// is declared under, the field naming its target, and the content group the
// edits run against.
type Contract struct {
	Key         string
	TargetField string
	Kind        content.Kind
}

// Groups lists the edit groups in application order: scripts, then styles,
// then passages.
var Groups = []Contract{
	{Key: "js", TargetField: "fileName", Kind: content.KindScript},
	{Key: "css", TargetField: "fileName", Kind: content.KindStyle},
	{Key: "twee", TargetField: "passageName", Kind: content.KindPassage},
}

// ContractForKey returns the contract declared under key, if it exists.
func ContractForKey(key string) (Contract, bool) {
	for _, c := range Groups {
		if c.Key == key {
			return c, true
		}
	}
	return Contract{}, false
}

// ContractForKind returns the contract whose edits target kind.
func ContractForKind(kind content.Kind) (Contract, bool) {
	for _, c := range Groups {
		if c.Kind == kind {
			return c, true
		}
	}
	return Contract{}, false
}
