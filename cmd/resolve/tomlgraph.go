package main

import (
	"github.com/pelletier/go-toml"
	"github.com/pelletier/go-toml/query"
	"github.com/pkg/errors"
)

// tomlgraph.go decodes a graph-description TOML document into the raw
// shapes below, the same tomlMapper/Query-based idiom as the teacher's
// toml.go: a mapper carries a *toml.Tree plus a sticky Error field so a
// whole chain of reads can short-circuit on the first failure instead of
// checking an error after every field.

type tomlMapper struct {
	Tree  *toml.Tree
	Error error
}

type rawDependency struct {
	Target     string
	Constraint string
}

type rawVersion struct {
	Number       string
	Dependencies []rawDependency
}

type rawPackage struct {
	Name     string
	Versions []rawVersion
}

type rawConstraint struct {
	Package    string
	Constraint string
}

type rawGraph struct {
	Packages    []rawPackage
	Constraints []rawConstraint
}

// loadGraphFile parses body as TOML and decodes it into a rawGraph.
func loadGraphFile(body []byte) (rawGraph, error) {
	tree, err := toml.LoadBytes(body)
	if err != nil {
		return rawGraph{}, errors.Wrap(err, "parsing graph file")
	}
	mapper := &tomlMapper{Tree: tree}

	g := rawGraph{
		Packages:    readTableAsPackages(mapper, "package"),
		Constraints: readTableAsConstraints(mapper, "constraint"),
	}
	if mapper.Error != nil {
		return rawGraph{}, mapper.Error
	}
	return g, nil
}

func queryTables(mapper *tomlMapper, table string) ([]*toml.Tree, bool) {
	result, err := query.CompileAndExecute("$."+table, mapper.Tree)
	if err != nil {
		mapper.Error = errors.Wrapf(err, "unable to query for [[%s]]", table)
		return nil, false
	}
	matches := result.Values()
	if len(matches) == 0 {
		return nil, true
	}
	tables, ok := matches[0].([]*toml.Tree)
	if !ok {
		mapper.Error = errors.Errorf("invalid query result type for [[%s]], want array of tables, got %T", table, matches[0])
		return nil, false
	}
	return tables, true
}

func readTableAsPackages(mapper *tomlMapper, table string) []rawPackage {
	if mapper.Error != nil {
		return nil
	}
	tables, ok := queryTables(mapper, table)
	if !ok || tables == nil {
		return nil
	}
	out := make([]rawPackage, len(tables))
	for i, t := range tables {
		out[i] = readPackage(&tomlMapper{Tree: t}, mapper)
	}
	return out
}

func readPackage(sub *tomlMapper, parent *tomlMapper) rawPackage {
	if parent.Error != nil {
		return rawPackage{}
	}
	p := rawPackage{
		Name:     readKeyAsString(sub, "name"),
		Versions: readTableAsVersions(sub, "version"),
	}
	if sub.Error != nil {
		parent.Error = sub.Error
	}
	return p
}

func readTableAsVersions(mapper *tomlMapper, table string) []rawVersion {
	if mapper.Error != nil {
		return nil
	}
	tables, ok := queryTables(mapper, table)
	if !ok || tables == nil {
		return nil
	}
	out := make([]rawVersion, len(tables))
	for i, t := range tables {
		out[i] = readVersion(&tomlMapper{Tree: t}, mapper)
	}
	return out
}

func readVersion(sub *tomlMapper, parent *tomlMapper) rawVersion {
	if parent.Error != nil {
		return rawVersion{}
	}
	v := rawVersion{
		Number:       readKeyAsString(sub, "number"),
		Dependencies: readTableAsDependencies(sub, "dependency"),
	}
	if sub.Error != nil {
		parent.Error = sub.Error
	}
	return v
}

func readTableAsDependencies(mapper *tomlMapper, table string) []rawDependency {
	if mapper.Error != nil {
		return nil
	}
	tables, ok := queryTables(mapper, table)
	if !ok || tables == nil {
		return nil
	}
	out := make([]rawDependency, len(tables))
	for i, t := range tables {
		sub := &tomlMapper{Tree: t}
		out[i] = rawDependency{
			Target:     readKeyAsString(sub, "target"),
			Constraint: readKeyAsString(sub, "constraint"),
		}
		if sub.Error != nil {
			mapper.Error = sub.Error
		}
	}
	return out
}

func readTableAsConstraints(mapper *tomlMapper, table string) []rawConstraint {
	if mapper.Error != nil {
		return nil
	}
	tables, ok := queryTables(mapper, table)
	if !ok || tables == nil {
		return nil
	}
	out := make([]rawConstraint, len(tables))
	for i, t := range tables {
		sub := &tomlMapper{Tree: t}
		out[i] = rawConstraint{
			Package:    readKeyAsString(sub, "package"),
			Constraint: readKeyAsString(sub, "constraint"),
		}
		if sub.Error != nil {
			mapper.Error = sub.Error
		}
	}
	return out
}

func readKeyAsString(mapper *tomlMapper, key string) string {
	if mapper.Error != nil {
		return ""
	}
	rawValue := mapper.Tree.GetDefault(key, "")
	value, ok := rawValue.(string)
	if !ok {
		mapper.Error = errors.Errorf("invalid type for %s, want string, got %T", key, rawValue)
		return ""
	}
	return value
}
