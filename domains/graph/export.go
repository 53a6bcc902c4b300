package graph

import (
	"bufio"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
)

const (
	TypeRepository  = "repository"
	TypeContributor = "contributor"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatGML  Format = "gml"
)

// ParseFormat accepts json or gml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatGML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown graph format %q, want json or gml", s)
	}
}

// Write encodes g in format f.
func (g *Graph) Write(w io.Writer, f Format) error {
	switch f {
	case FormatGML:
		return g.WriteGML(w)
	case FormatJSON:
		return g.WriteJSON(w)
	default:
		return fmt.Errorf("unknown graph format %q", f)
	}
}

type cyElement struct {
	Data map[string]any `json:"data"`
}

type cyDocument struct {
	Elements struct {
		Nodes []cyElement `json:"nodes"`
		Edges []cyElement `json:"edges"`
	} `json:"elements"`
}

// WriteJSON encodes g as a Cytoscape elements document. Repository nodes carry
// one extra key per language holding its size.
func (g *Graph) WriteJSON(w io.Writer) error {
	var doc cyDocument
	doc.Elements.Nodes = make([]cyElement, 0, len(g.Repositories)+len(g.Contributors))
	doc.Elements.Edges = make([]cyElement, 0, len(g.Edges))

	for _, r := range g.Repositories {
		data := make(map[string]any, len(r.Languages)+6)
		for lang, weight := range r.Languages {
			data[lang] = weight
		}
		data["id"] = repositoryID(r.Rank)
		data["label"] = r.Label()
		data["type"] = TypeRepository
		data["owner"] = r.Owner
		data["project"] = r.Project
		data["stars"] = stars(r.Stars)

		doc.Elements.Nodes = append(doc.Elements.Nodes, cyElement{Data: data})
	}

	for _, c := range g.Contributors {
		doc.Elements.Nodes = append(doc.Elements.Nodes, cyElement{Data: map[string]any{
			"id":    c.Email,
			"label": c.Email,
			"type":  TypeContributor,
		}})
	}

	for i, e := range g.Edges {
		doc.Elements.Edges = append(doc.Elements.Edges, cyElement{Data: map[string]any{
			"id":     "e" + strconv.Itoa(i),
			"source": e.Email,
			"target": repositoryID(e.Rank),
			"weight": e.Commits,
		}})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteGML encodes g in the Graph Modelling Language. Edges run from repository
// to contributor and are labelled with the commit count. Languages are written
// as one language block per entry since their names are not valid GML keys.
func (g *Graph) WriteGML(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "graph [")

	for _, r := range g.Repositories {
		fmt.Fprintln(bw, "\tnode [")
		fmt.Fprintf(bw, "\t\tid %d\n", r.Rank)
		fmt.Fprintf(bw, "\t\tlabel %s\n", gmlString(r.Label()))
		fmt.Fprintf(bw, "\t\ttype %s\n", gmlString(TypeRepository))
		fmt.Fprintf(bw, "\t\towner %s\n", gmlString(r.Owner))
		fmt.Fprintf(bw, "\t\tproject %s\n", gmlString(r.Project))
		if r.Stars != nil {
			fmt.Fprintf(bw, "\t\tstars %d\n", *r.Stars)
		}
		for _, lang := range sortedKeys(r.Languages) {
			fmt.Fprintf(bw, "\t\tlanguage [ name %s weight %d ]\n", gmlString(lang), r.Languages[lang])
		}
		fmt.Fprintln(bw, "\t]")
	}

	for _, c := range g.Contributors {
		fmt.Fprintln(bw, "\tnode [")
		fmt.Fprintf(bw, "\t\tid %s\n", gmlString(c.Email))
		fmt.Fprintf(bw, "\t\tlabel %s\n", gmlString(c.Email))
		fmt.Fprintf(bw, "\t\ttype %s\n", gmlString(TypeContributor))
		fmt.Fprintln(bw, "\t]")
	}

	for _, e := range g.Edges {
		fmt.Fprintln(bw, "\tedge [")
		fmt.Fprintf(bw, "\t\tsource %d\n", e.Rank)
		fmt.Fprintf(bw, "\t\ttarget %s\n", gmlString(e.Email))
		fmt.Fprintf(bw, "\t\tlabel %d\n", e.Commits)
		fmt.Fprintln(bw, "\t]")
	}

	fmt.Fprintln(bw, "]")
	return bw.Flush()
}

func repositoryID(rank int64) string {
	return strconv.FormatInt(rank, 10)
}

func stars(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

// gmlString quotes s, escaping characters GML strings cannot hold as HTML entities.
func gmlString(s string) string {
	return `"` + html.EscapeString(s) + `"`
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
