package dependencies

import (
	"github.com/temirov/gitdeps/internal/manifests/document"
	"github.com/temirov/gitdeps/internal/manifests/shared"
)

// Change records the rewrite of one dependency entry.
type Change struct {
	Table            string `yaml:"table"`
	Dependency       string `yaml:"dependency"`
	PreviousLocation string `yaml:"previous_git,omitempty"`
	NewLocation      string `yaml:"git"`
	PreviousRevision string `yaml:"previous_rev,omitempty"`
	Revision         string `yaml:"rev,omitempty"`
	PreviousBranch   string `yaml:"previous_branch,omitempty"`
	Branch           string `yaml:"branch,omitempty"`
}

// Mutator rewrites located dependency entries in place.
type Mutator struct {
	configuration shared.MutationConfiguration
}

// NewMutator validates configuration and constructs a Mutator.
func NewMutator(configuration shared.MutationConfiguration) (*Mutator, error) {
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}
	return &Mutator{configuration: configuration}, nil
}

// Mutate points the git key of every named entry of tableName at the new
// location and applies the configured pin. A configured rev removes branch
// and a configured branch removes rev; with neither configured existing pins
// stay as they are.
func (mutator *Mutator) Mutate(manifestDocument *document.Document, tableName string, names []string) ([]Change, error) {
	members, membersError := tableMembers(manifestDocument, tableName)
	if membersError != nil {
		return nil, membersError
	}

	membersByName := make(map[string]document.Member, len(members))
	for _, member := range members {
		membersByName[member.Name] = member
	}

	changes := make([]Change, 0, len(names))
	for _, name := range names {
		member, memberFound := membersByName[name]
		if !memberFound {
			return nil, &shared.MutationError{
				Table: tableName,
				Entry: name,
				Err:   &shared.NotFoundError{Reason: shared.NotFoundReasonMissingKey, Table: tableName, Entry: name},
			}
		}
		if !member.IsTable() {
			return nil, &shared.MutationError{
				Table: tableName,
				Entry: name,
				Err:   &shared.NotFoundError{Reason: shared.NotFoundReasonWrongValueKind, Table: tableName, Entry: name},
			}
		}
		changes = append(changes, mutator.mutateEntry(member.Table, tableName, name))
	}
	return changes, nil
}

func (mutator *Mutator) mutateEntry(table document.TableHandle, tableName string, name string) Change {
	change := Change{
		Table:            tableName,
		Dependency:       name,
		PreviousLocation: stringEntry(table, shared.GitKeyConstant),
		PreviousRevision: stringEntry(table, shared.RevisionKeyConstant),
		PreviousBranch:   stringEntry(table, shared.BranchKeyConstant),
	}

	replaceEntry(table, shared.GitKeyConstant, mutator.configuration.NewLocation)
	switch {
	case mutator.configuration.PinsRevision():
		replaceEntry(table, shared.RevisionKeyConstant, mutator.configuration.Revision)
		table.Remove(shared.BranchKeyConstant)
	case mutator.configuration.PinsBranch():
		replaceEntry(table, shared.BranchKeyConstant, mutator.configuration.Branch)
		table.Remove(shared.RevisionKeyConstant)
	}

	change.NewLocation = stringEntry(table, shared.GitKeyConstant)
	change.Revision = stringEntry(table, shared.RevisionKeyConstant)
	change.Branch = stringEntry(table, shared.BranchKeyConstant)
	return change
}

func replaceEntry(table document.TableHandle, key string, text string) {
	table.Remove(key)
	table.Insert(key, document.NewStringValue(text))
}

func stringEntry(table document.TableHandle, key string) string {
	value, found := table.Get(key)
	if !found {
		return ""
	}
	stringValue, isString := value.(*document.StringValue)
	if !isString {
		return ""
	}
	return stringValue.Text()
}
