package domain

import "strings"

// EntityKind distinguishes the two node types of the graph.
type EntityKind string

const (
	KindPerson  EntityKind = "PERSON"
	KindCompany EntityKind = "ORG"
)

// EntityRef identifies an entity within one document: the primary name for
// people, the registry identifier for companies.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	Key  string     `json:"key"`
}

func PersonRef(name string) EntityRef {
	return EntityRef{Kind: KindPerson, Key: name}
}

func CompanyRef(id string) EntityRef {
	return EntityRef{Kind: KindCompany, Key: id}
}

func (r EntityRef) String() string {
	return string(r.Kind) + ":" + r.Key
}

// Mention is one NER hit before resolution.
type Mention struct {
	Text     string     `json:"text"`
	Kind     EntityKind `json:"kind"`
	Contexts []string   `json:"contexts"`
	Start    int        `json:"start"`
	End      int        `json:"end"`
}

// ResolvedMention is an organization mention matched to a registry entry.
type ResolvedMention struct {
	Mention
	CompanyID string `json:"company_id"`
}

type PersonEntity struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases"`
	Contexts []string `json:"contexts"`
}

func NewPersonEntity(name string, contexts []string) *PersonEntity {
	p := &PersonEntity{Name: name, Aliases: []string{name}}
	p.AddContexts(contexts...)
	return p
}

func (p *PersonEntity) Ref() EntityRef {
	return PersonRef(p.Name)
}

// AddAlias appends alias unless it is already present.
func (p *PersonEntity) AddAlias(alias string) bool {
	if containsString(p.Aliases, alias) {
		return false
	}
	p.Aliases = append(p.Aliases, alias)
	return true
}

func (p *PersonEntity) AddContexts(contexts ...string) {
	p.Contexts = appendUnique(p.Contexts, contexts...)
}

func (p *PersonEntity) Node() EntityNode {
	return EntityNode{Ref: p.Ref(), Name: p.Name, Aliases: p.Aliases, Contexts: p.Contexts}
}

type CompanyEntity struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases"`
	Contexts []string `json:"contexts"`
	Company  *Company `json:"metadata,omitempty"`
}

func (c *CompanyEntity) Ref() EntityRef {
	return CompanyRef(c.ID)
}

// AddAlias appends alias unless an alias equal to it ignoring case exists.
func (c *CompanyEntity) AddAlias(alias string) bool {
	for _, a := range c.Aliases {
		if strings.EqualFold(a, alias) {
			return false
		}
	}
	c.Aliases = append(c.Aliases, alias)
	return true
}

func (c *CompanyEntity) AddContexts(contexts ...string) {
	c.Contexts = appendUnique(c.Contexts, contexts...)
}

func (c *CompanyEntity) Node() EntityNode {
	return EntityNode{Ref: c.Ref(), Name: c.Name, Aliases: c.Aliases, Contexts: c.Contexts}
}

// EntityNode is the kind-independent view used for relationship discovery.
type EntityNode struct {
	Ref      EntityRef
	Name     string
	Aliases  []string
	Contexts []string
}

// HasContext reports whether ctx is one of the node's contexts.
func (n EntityNode) HasContext(ctx string) bool {
	return containsString(n.Contexts, ctx)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		if !containsString(list, it) {
			list = append(list, it)
		}
	}
	return list
}
