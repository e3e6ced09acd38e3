package patch

import (
	"fmt"
	"strings"

	"github.com/kingrea/modpatch/internal/content"
	"github.com/kingrea/modpatch/internal/contracts"
)

// applyEdit runs one literal find-and-replace against group. Script, style
// and passage edits all go through here; only the target label differs.
// The item is mutated in place, so later edits see this one's result.
func (e *Engine) applyEdit(contributor string, group *content.Group, edit contracts.Edit) EditOutcome {
	outcome := EditOutcome{
		Kind:   edit.Kind,
		Target: edit.Target,
		From:   edit.From,
		All:    edit.All,
	}
	label := targetLabel(edit.Kind)

	item, ok := group.Get(edit.Target)
	if !ok {
		outcome.Status = EditTargetMissing
		outcome.Err = fmt.Sprintf("%v: %s %s", ErrTargetNotFound, label, edit.Target)
		e.log.Error("%s: %s: cannot find %s: %s", logPrefix, contributor, label, edit.Target)
		return outcome
	}

	if edit.Debug {
		e.log.Log("%s: %s: debug %s %s from=%q to=%q all=%t\n--- before ---\n%s",
			logPrefix, contributor, label, edit.Target, edit.From, edit.To, edit.All, item.Content)
	}

	outcome.Occurrences = strings.Count(item.Content, edit.From)
	if outcome.Occurrences == 0 {
		outcome.Status = EditMatchMissing
		outcome.Err = fmt.Sprintf("%v: %q in %s %s", ErrMatchNotFound, edit.From, label, edit.Target)
		e.log.Error("%s: %s: cannot find 'from': %s in: %s", logPrefix, contributor, edit.From, edit.Target)
		return outcome
	}

	before := item.Content
	if edit.All {
		item.Content = strings.ReplaceAll(before, edit.From, edit.To)
		outcome.Replaced = outcome.Occurrences
	} else {
		if outcome.Occurrences > 1 {
			outcome.Ambiguous = true
			e.log.Warn("%s: %s: found %d occurrences of 'from': %s in: %s; only the first is replaced",
				logPrefix, contributor, outcome.Occurrences, edit.From, edit.Target)
		}
		item.Content = strings.Replace(before, edit.From, edit.To, 1)
		outcome.Replaced = 1
	}

	if edit.Debug {
		e.log.Log("%s: %s: debug %s %s\n--- after ---\n%s\n--- diff ---\n%s",
			logPrefix, contributor, label, edit.Target, item.Content, Diff(before, item.Content))
	}
	outcome.Status = EditApplied
	e.log.Log("%s: %s: done: %s %s", logPrefix, contributor, edit.Target, edit.From)
	return outcome
}

func targetLabel(kind content.Kind) string {
	if kind == content.KindPassage {
		return "passage"
	}
	return "file"
}
