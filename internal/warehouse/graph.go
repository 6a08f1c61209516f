package warehouse

import (
	"fmt"
	"sort"
	"strings"
)

// DependencyError reports a table whose prerequisites are missing or empty,
// or a cycle in the table graph.
type DependencyError struct {
	Table   string
	Missing []string
	Cycle   []string
}

func (e *DependencyError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("dependency cycle between tables: %s", strings.Join(e.Cycle, ", "))
	}
	return fmt.Sprintf("table %s is missing prerequisites: %s", e.Table, strings.Join(e.Missing, ", "))
}

// Dependencies returns the table graph: each table mapped to the tables it
// references by foreign key.
func Dependencies() map[string][]string {
	deps := make(map[string][]string, len(schemas))
	for _, t := range schemas {
		deps[t.Name] = t.Dependencies()
	}
	return deps
}

// TopoSort orders the nodes of deps so that every node comes after all of
// its dependencies, using Kahn's algorithm. Ties are broken by name so the
// result is stable.
func TopoSort(deps map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string)

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var missing []string
		for _, dep := range deps[name] {
			if _, ok := deps[dep]; !ok {
				missing = append(missing, dep)
				continue
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
		if len(missing) > 0 {
			return nil, &DependencyError{Table: name, Missing: missing}
		}
	}

	var ready []string
	for _, name := range names {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	sorted := make([]string, 0, len(deps))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		sorted = append(sorted, name)

		var next []string
		for _, child := range dependents[name] {
			inDegree[child]--
			if inDegree[child] == 0 {
				next = append(next, child)
			}
		}
		ready = append(ready, next...)
		sort.Strings(ready)
	}

	if len(sorted) < len(deps) {
		var cycle []string
		for _, name := range names {
			if inDegree[name] > 0 {
				cycle = append(cycle, name)
			}
		}
		return nil, &DependencyError{Cycle: cycle}
	}
	return sorted, nil
}

// GenerationOrder returns the validated order in which tables are built.
func GenerationOrder() ([]string, error) {
	return TopoSort(Dependencies())
}

// CheckOrder verifies that every table in order appears after the tables
// it depends on. A dependency absent from order counts as missing.
func CheckOrder(order []string, deps map[string][]string) error {
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	for i, name := range order {
		var missing []string
		for _, dep := range deps[name] {
			if p, ok := pos[dep]; !ok || p > i {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Table: name, Missing: missing}
		}
	}
	return nil
}
