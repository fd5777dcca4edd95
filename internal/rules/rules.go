package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/stripelint/stripelint/internal/types"
)

// StripeKeyID is the ID of the built-in Stripe key rule.
const StripeKeyID = "stripe_api_key"

// Rule describes one key shape. Matches whose text contains ErrorWhen are
// reported as errors; every other match is a warning.
type Rule struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Pattern     string `yaml:"pattern" json:"pattern"`
	ErrorWhen   string `yaml:"error_when,omitempty" json:"error_when,omitempty"`

	re *regexp.Regexp
}

// Severity returns the severity for a matched substring.
func (r Rule) Severity(match string) types.Severity {
	if r.ErrorWhen != "" && strings.Contains(match, r.ErrorWhen) {
		return types.SeverityError
	}
	return types.SeverityWarning
}

// Table is an ordered set of compiled rules.
type Table []Rule

// Default returns the built-in table: live and test, secret and publishable
// Stripe keys. Only live secret keys are errors.
func Default() Table {
	t, err := Compile([]Rule{{
		ID:          StripeKeyID,
		Description: "Stripe secret or publishable API key",
		Pattern:     `(sk_test|sk_live|pk_test|pk_live)_[A-Za-z0-9]{10,64}`,
		ErrorWhen:   "sk_live",
	}})
	if err != nil {
		panic(err)
	}
	return t
}

// Compile validates and compiles a rule list. IDs must be unique and
// patterns must not match the empty string.
func Compile(in []Rule) (Table, error) {
	seen := map[string]bool{}
	out := make(Table, 0, len(in))
	for _, r := range in {
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			return nil, fmt.Errorf("rule with pattern %q has no id", r.Pattern)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if re.MatchString("") {
			return nil, fmt.Errorf("rule %s: pattern matches empty string", r.ID)
		}
		r.re = re
		out = append(out, r)
	}
	return out, nil
}

// Merge returns t followed by extra, replacing rules of t that share an ID
// with an entry of extra.
func (t Table) Merge(extra []Rule) (Table, error) {
	override := map[string]bool{}
	for _, r := range extra {
		override[strings.TrimSpace(r.ID)] = true
	}
	var all []Rule
	for _, r := range t {
		if !override[r.ID] {
			all = append(all, r)
		}
	}
	all = append(all, extra...)
	return Compile(all)
}

// IDs lists rule IDs in table order.
func (t Table) IDs() []string {
	ids := make([]string, len(t))
	for i, r := range t {
		ids[i] = r.ID
	}
	return ids
}

// Lookup finds a rule by ID.
func (t Table) Lookup(id string) (Rule, bool) {
	for _, r := range t {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// FindLine returns every non-overlapping match on one line, ordered left to
// right. When rules overlap the leftmost (then longest) match wins. Start is
// reported in runes so it lines up with editor columns.
func (t Table) FindLine(lineNo int, line string) []types.Match {
	type span struct {
		start, end int
		rule       string
	}
	var spans []span
	for _, r := range t {
		if r.re == nil {
			continue
		}
		for _, loc := range r.re.FindAllStringIndex(line, -1) {
			spans = append(spans, span{loc[0], loc[1], r.ID})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})
	var out []types.Match
	end := -1
	for _, s := range spans {
		if s.start < end {
			continue
		}
		out = append(out, types.Match{
			Line:  lineNo,
			Start: utf8.RuneCountInString(line[:s.start]),
			Text:  line[s.start:s.end],
			Rule:  s.rule,
		})
		end = s.end
	}
	return out
}
