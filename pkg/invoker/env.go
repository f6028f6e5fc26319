package invoker

import (
	"slices"
	"strings"
)

// overrides keep target programs from paging, coloring or prompting.
var overrides = []string{
	"PAGER=cat",
	"GIT_PAGER=cat",
	"MANPAGER=cat",
	"TERM=dumb",
	"NO_COLOR=1",
	"GIT_TERMINAL_PROMPT=0",
	"CI=1",
	"COLUMNS=200",
}

// Environ builds the environment of an invoked program: base without any
// overridden key, followed by the built-in overrides and then extra.
// Later entries win when a key repeats in extra.
func Environ(base, extra []string) []string {
	drop := make(map[string]bool, len(overrides)+len(extra))
	for _, kv := range slices.Concat(overrides, extra) {
		drop[envKey(kv)] = true
	}

	env := make([]string, 0, len(base)+len(overrides)+len(extra))
	for _, kv := range base {
		if !drop[envKey(kv)] {
			env = append(env, kv)
		}
	}

	seen := make(map[string]int, len(overrides)+len(extra))
	for _, kv := range slices.Concat(overrides, extra) {
		k := envKey(kv)
		if i, ok := seen[k]; ok {
			env[i] = kv
			continue
		}
		seen[k] = len(env)
		env = append(env, kv)
	}
	return env
}

func envKey(kv string) string {
	k, _, _ := strings.Cut(kv, "=")
	return k
}
