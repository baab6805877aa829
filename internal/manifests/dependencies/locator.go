package dependencies

import (
	"fmt"

	"github.com/temirov/gitdeps/internal/manifests/document"
	"github.com/temirov/gitdeps/internal/manifests/shared"
)

const invalidTableNameTemplateConstant = "%w: dependency table %q: %v"

// Shape classifies how a dependency entry is written.
type Shape int

// Dependency entry shapes.
const (
	// ShapeVersionString is `name = "1.0"`.
	ShapeVersionString Shape = iota
	// ShapeInlineTable is `name = { ... }`.
	ShapeInlineTable
	// ShapeBlockTable is a `[table.name]` section.
	ShapeBlockTable
	// ShapeDottedTable is a group of `name.key = ...` entries.
	ShapeDottedTable
	// ShapeOther is any other value, such as an integer or array.
	ShapeOther
)

// String returns a human-readable name for the shape.
func (shape Shape) String() string {
	switch shape {
	case ShapeVersionString:
		return "version-string"
	case ShapeInlineTable:
		return "inline-table"
	case ShapeBlockTable:
		return "block-table"
	case ShapeDottedTable:
		return "dotted-table"
	default:
		return "other"
	}
}

// IsTable reports whether entries of this shape can carry keys.
func (shape Shape) IsTable() bool {
	switch shape {
	case ShapeInlineTable, ShapeBlockTable, ShapeDottedTable:
		return true
	default:
		return false
	}
}

// Eligible reports whether an entry of shape is rewritten. Only table-shaped
// entries holding a git key qualify.
func Eligible(shape Shape, hasGitKey bool) bool {
	return shape.IsTable() && hasGitKey
}

// Entry describes one member of a dependency table.
type Entry struct {
	Name     string
	Shape    Shape
	Eligible bool
}

// Locator finds rewrite candidates in dependency tables.
type Locator struct{}

// NewLocator constructs a Locator.
func NewLocator() *Locator {
	return &Locator{}
}

// Locate returns the names of eligible entries of tableName in declaration
// order. A missing table yields a NotFoundError with NotFoundReasonMissingTable.
func (locator *Locator) Locate(manifestDocument *document.Document, tableName string) ([]string, error) {
	entries, entriesError := locator.Entries(manifestDocument, tableName)
	if entriesError != nil {
		return nil, entriesError
	}

	var eligibleNames []string
	for _, entry := range entries {
		if entry.Eligible {
			eligibleNames = append(eligibleNames, entry.Name)
		}
	}
	return eligibleNames, nil
}

// Entries classifies every member of tableName.
func (locator *Locator) Entries(manifestDocument *document.Document, tableName string) ([]Entry, error) {
	members, membersError := tableMembers(manifestDocument, tableName)
	if membersError != nil {
		return nil, membersError
	}

	entries := make([]Entry, 0, len(members))
	for _, member := range members {
		shape := shapeOf(member)
		hasGitKey := member.Table != nil && member.Table.Contains(shared.GitKeyConstant)
		entries = append(entries, Entry{Name: member.Name, Shape: shape, Eligible: Eligible(shape, hasGitKey)})
	}
	return entries, nil
}

// HasTable reports whether tableName is present in the document.
func (locator *Locator) HasTable(manifestDocument *document.Document, tableName string) (bool, error) {
	tablePath, pathError := parseTableName(tableName)
	if pathError != nil {
		return false, pathError
	}
	return manifestDocument.HasTable(tablePath), nil
}

func tableMembers(manifestDocument *document.Document, tableName string) ([]document.Member, error) {
	tablePath, pathError := parseTableName(tableName)
	if pathError != nil {
		return nil, pathError
	}

	members, found := manifestDocument.TableMembers(tablePath)
	if !found {
		return nil, &shared.NotFoundError{Reason: shared.NotFoundReasonMissingTable, Table: tableName}
	}
	return members, nil
}

func parseTableName(tableName string) ([]string, error) {
	tablePath, pathError := document.ParseKeyPath(tableName)
	if pathError != nil {
		return nil, fmt.Errorf(invalidTableNameTemplateConstant, shared.ErrConfiguration, tableName, pathError)
	}
	return tablePath, nil
}

func shapeOf(member document.Member) Shape {
	switch member.Kind {
	case document.MemberKindInlineTable:
		return ShapeInlineTable
	case document.MemberKindBlockTable:
		return ShapeBlockTable
	case document.MemberKindDottedTable:
		return ShapeDottedTable
	case document.MemberKindValue:
		if member.Value != nil && member.Value.Kind() == document.ValueKindString {
			return ShapeVersionString
		}
		return ShapeOther
	default:
		return ShapeOther
	}
}
