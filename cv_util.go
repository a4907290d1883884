package convoker

import (
	"errors"
	"sort"
)

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHelpAsked(err error) bool {
	return errors.Is(err, HelpAskedErr)
}

// sortedNames puts single-character aliases before long ones, keeping
// declaration order otherwise.
func sortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) == 1 && len(out[j]) != 1
	})
	return out
}
