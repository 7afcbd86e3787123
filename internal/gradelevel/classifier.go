// Package gradelevel ranks and abbreviates free-text grade names such as
// "Grade 7", "PP1", "Baby Class" or "Form 2" for grade pickers.
package gradelevel

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a grade name.
type Kind int

const (
	Unknown Kind = iota
	EarlyYears
	Primary
	Form
)

func (k Kind) String() string {
	switch k {
	case EarlyYears:
		return "EARLY_YEARS"
	case Primary:
		return "PRIMARY"
	case Form:
		return "FORM"
	default:
		return "UNKNOWN"
	}
}

// UnrankedRank is assigned to names the classifier does not recognise so they sort last.
const UnrankedRank = 999

// Class is the classification of a single grade name.
// Number is the early-years step (0 for play group, 1..3 for PP1..PP3),
// the primary grade 1..6, or the form number 1.. for secondary.
type Class struct {
	Kind   Kind
	Number int
	Rank   int
	Label  string
}

// Classify maps a grade name to its rank and short label. It never fails.
func Classify(name string) Class {
	normalized := normalize(name)

	if c, ok := classifyEarlyYears(normalized); ok {
		return c
	}

	if n, ok := firstInteger(normalized); ok {
		grade := n
		if n >= 1 && strings.Contains(normalized, "form") {
			grade = n + 6
		}
		switch {
		case grade >= 1 && grade <= 6:
			return Class{Kind: Primary, Number: grade, Rank: 4 + grade, Label: fmt.Sprintf("G%d", grade)}
		case grade >= 7:
			return Class{Kind: Form, Number: grade - 6, Rank: 4 + grade, Label: fmt.Sprintf("F%d", grade-6)}
		}
	}

	return Class{Kind: Unknown, Rank: UnrankedRank, Label: fallbackLabel(name)}
}

// Abbreviate returns the display label for a grade name.
func Abbreviate(name string) string {
	return Classify(name).Label
}

// Rank returns the ordering rank for a grade name.
func Rank(name string) int {
	return Classify(name).Rank
}

// Compare orders grade names by rank, then label, then normalised name.
func Compare(a, b string) int {
	ca, cb := Classify(a), Classify(b)
	if ca.Rank != cb.Rank {
		if ca.Rank < cb.Rank {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ca.Label, cb.Label); c != 0 {
		return c
	}
	return strings.Compare(normalize(a), normalize(b))
}

// Sort orders names in place using Compare.
func Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return Compare(names[i], names[j]) < 0
	})
}

func classifyEarlyYears(normalized string) (Class, bool) {
	if strings.Contains(normalized, "baby") || strings.Contains(normalized, "play group") || strings.Contains(normalized, "playgroup") {
		return Class{Kind: EarlyYears, Number: 0, Rank: 1, Label: "PG"}, true
	}
	compact := strings.ReplaceAll(normalized, " ", "")
	for step := 1; step <= 3; step++ {
		if strings.Contains(compact, fmt.Sprintf("pp%d", step)) {
			return Class{Kind: EarlyYears, Number: step, Rank: 1 + step, Label: fmt.Sprintf("PP%d", step)}, true
		}
	}
	return Class{}, false
}

func firstInteger(s string) (int, bool) {
	n, found := 0, false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			found = true
			n = n*10 + int(r-'0')
			if n > 1_000_000 {
				return n, true
			}
			continue
		}
		if found {
			break
		}
	}
	return n, found
}

func fallbackLabel(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
