package model

import "strings"

// Category kinds.
const (
	KindTecnico   = "Técnico"
	KindGraduacao = "Graduação"
)

// FilterAll is the category filter option that matches every record.
const FilterAll = "Todos"

// Kinds lists the category kinds in display order.
var Kinds = []string{KindTecnico, KindGraduacao}

var areas = map[string][]string{
	KindTecnico: {
		"Automação Industrial",
		"Eletrônica",
		"Informática",
		"Outros (Técnico)",
	},
	KindGraduacao: {
		"Engenharia de Software",
		"Eng. Controle e Automação",
		"Engenharia Civil",
		"Outros (Graduação)",
	},
}

// Areas returns the fixed areas for kind, or nil for an unknown kind.
func Areas(kind string) []string {
	a := areas[kind]
	if a == nil {
		return nil
	}
	out := make([]string, len(a))
	copy(out, a)
	return out
}

// FilterOptions are the choices offered by the category filter.
func FilterOptions() []string {
	return append([]string{FilterAll}, Kinds...)
}

// Category joins a kind and an area as stored: "<kind> - <area>".
func Category(kind, area string) string {
	return kind + " - " + area
}

// ParseCategory splits a stored category on its first '-'. A value without
// a separator is returned whole as the kind.
func ParseCategory(s string) (kind, area string) {
	before, after, found := strings.Cut(s, "-")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// KindFilter maps a filter option to the category substring it selects.
// FilterAll and the empty option select everything.
func KindFilter(option string) string {
	option = strings.TrimSpace(option)
	if option == FilterAll {
		return ""
	}
	return option
}
