package document

import "slices"

// MemberKind classifies how a named member of a table is written.
type MemberKind int

// Member layouts.
const (
	// MemberKindValue is `name = <non-table value>`.
	MemberKindValue MemberKind = iota
	// MemberKindInlineTable is `name = { ... }`.
	MemberKindInlineTable
	// MemberKindBlockTable is a `[parent.name]` section.
	MemberKindBlockTable
	// MemberKindDottedTable is a group of `name.key = ...` entries.
	MemberKindDottedTable
)

// String returns a human-readable name for the member kind.
func (kind MemberKind) String() string {
	switch kind {
	case MemberKindValue:
		return "value"
	case MemberKindInlineTable:
		return "inline-table"
	case MemberKindBlockTable:
		return "block-table"
	case MemberKindDottedTable:
		return "dotted-table"
	default:
		return "unknown"
	}
}

// Member is a named child of a table.
type Member struct {
	Name  string
	Kind  MemberKind
	Value Value
	Table TableHandle
}

// IsTable reports whether the member can be edited as a table.
func (member Member) IsTable() bool {
	return member.Table != nil
}

type bodyScope struct {
	path []string
	body *Table
}

// TableMembers lists the members of the table at path in declaration order.
// A table is found when it is declared by a header, assigned an inline table,
// extended with dotted keys, or implied by a sub-table header. The boolean
// result is false when none of these exist. Arrays of tables are not
// descended into.
func (document *Document) TableMembers(path []string) ([]Member, bool) {
	collector := &memberCollector{seen: make(map[string]struct{})}

	scopes := []bodyScope{{path: nil, body: document.root}}
	for _, section := range document.sections {
		if section.arrayOfTable {
			continue
		}
		scopes = append(scopes, bodyScope{path: section.Path(), body: section.body})
	}

	for _, scope := range scopes {
		switch {
		case slices.Equal(scope.path, path):
			collector.found = true
			collector.collectContainer(scope.body, nil)
		case len(scope.path) < len(path) && hasSegmentPrefix(path, scope.path):
			collector.collectFromAncestor(scope.body, path[len(scope.path):])
		case len(scope.path) == len(path)+1 && hasSegmentPrefix(scope.path, path):
			collector.found = true
			collector.add(Member{
				Name:  scope.path[len(path)],
				Kind:  MemberKindBlockTable,
				Table: newScopedTable(scope.body, nil),
			})
		case len(scope.path) > len(path)+1 && hasSegmentPrefix(scope.path, path):
			collector.found = true
		}
	}

	return collector.members, collector.found
}

type memberCollector struct {
	members []Member
	seen    map[string]struct{}
	found   bool
}

func (collector *memberCollector) add(member Member) {
	if _, alreadySeen := collector.seen[member.Name]; alreadySeen {
		return
	}
	collector.seen[member.Name] = struct{}{}
	collector.members = append(collector.members, member)
}

// collectContainer adds the members defined by entries of container whose
// keys start with prefix.
func (collector *memberCollector) collectContainer(container entryContainer, prefix []string) {
	for _, entry := range container.entryList() {
		segments := entry.key.Segments()
		if len(segments) <= len(prefix) || !hasSegmentPrefix(segments, prefix) {
			continue
		}
		relative := segments[len(prefix):]
		if len(relative) == 1 {
			collector.add(memberFromValue(relative[0], entry.value))
			continue
		}
		memberPrefix := segments[:len(prefix)+1]
		collector.add(Member{
			Name:  relative[0],
			Kind:  MemberKindDottedTable,
			Table: newScopedTable(container, memberPrefix),
		})
	}
}

// collectFromAncestor handles a body whose header is a proper ancestor of the
// requested table: the table is either assigned as an inline table or built
// from dotted keys.
func (collector *memberCollector) collectFromAncestor(body *Table, relativePath []string) {
	for _, entry := range body.entries {
		segments := entry.key.Segments()
		switch {
		case slices.Equal(segments, relativePath):
			inlineTable, isInlineTable := entry.value.(*InlineTableValue)
			if !isInlineTable {
				continue
			}
			collector.found = true
			collector.collectContainer(inlineTable, nil)
		case len(segments) > len(relativePath) && hasSegmentPrefix(segments, relativePath):
			collector.found = true
		}
	}
	collector.collectContainer(body, relativePath)
}

func memberFromValue(name string, value Value) Member {
	inlineTable, isInlineTable := value.(*InlineTableValue)
	if !isInlineTable {
		return Member{Name: name, Kind: MemberKindValue, Value: value}
	}
	return Member{
		Name:  name,
		Kind:  MemberKindInlineTable,
		Value: value,
		Table: newScopedTable(inlineTable, nil),
	}
}

// HasTable reports whether the document defines the table at path.
func (document *Document) HasTable(path []string) bool {
	_, found := document.TableMembers(path)
	return found
}
