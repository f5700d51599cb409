package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Upsert adds an entry or merges paths and aliases into the existing one.
func (r *AppRegistry) Upsert(e AppEntry) {
	e.Key = strings.ToLower(strings.TrimSpace(e.Key))
	if e.DisplayName == "" {
		e.DisplayName = displayName(e.Key)
	}
	if e.Process == "" {
		e.Process = processName(e.Key)
	}
	for i := range r.Apps {
		if r.Apps[i].Key != e.Key {
			continue
		}
		cur := &r.Apps[i]
		cur.Paths = mergeUnique(cur.Paths, e.Paths)
		cur.Aliases = mergeUnique(cur.Aliases, lowerAll(e.Aliases))
		cur.Available = cur.Available || e.Available
		r.touch()
		return
	}
	e.Aliases = lowerAll(e.Aliases)
	r.Apps = append(r.Apps, e)
	sort.Slice(r.Apps, func(i, j int) bool { return r.Apps[i].Key < r.Apps[j].Key })
	r.touch()
}

// Set changes one field of an entry. Fields: displayName, process, alias,
// path. alias and path append.
func (r *AppRegistry) Set(key, field, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	for i := range r.Apps {
		if r.Apps[i].Key != key {
			continue
		}
		e := &r.Apps[i]
		switch field {
		case "displayName":
			e.DisplayName = value
		case "process":
			e.Process = value
		case "alias":
			e.Aliases = mergeUnique(e.Aliases, []string{strings.ToLower(value)})
		case "path":
			e.Paths = mergeUnique(e.Paths, []string{value})
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		r.touch()
		return nil
	}
	return fmt.Errorf("app %s not found", key)
}

// Validate checks that keys and aliases are unique and every entry can be
// launched and closed.
func (r *AppRegistry) Validate() error {
	if len(r.Apps) == 0 {
		return fmt.Errorf("registry contains no apps")
	}
	owner := map[string]string{}
	for _, e := range r.Apps {
		if e.Key == "" {
			return fmt.Errorf("app missing required field: key")
		}
		if len(e.Paths) == 0 {
			return fmt.Errorf("app %s has no paths", e.Key)
		}
		if e.Process == "" {
			return fmt.Errorf("app %s missing required field: process", e.Key)
		}
		for _, n := range e.Names() {
			if prev, ok := owner[n]; ok {
				return fmt.Errorf("name %q used by both %s and %s", n, prev, e.Key)
			}
			owner[n] = e.Key
		}
	}
	return nil
}

func (r *AppRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

func mergeUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		dst = append(dst, s)
	}
	return dst
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
