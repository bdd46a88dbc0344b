package build

import (
	"context"
	"strings"

	"github.com/sofmeright/idebuild/src/host"
)

// MarkerKind says whether a marker must or must not appear.
type MarkerKind int

const (
	// MustNotContain fails the build when the marker is present.
	MustNotContain MarkerKind = iota
	// MustContain fails the build when the marker is absent (strict mode only).
	MustContain
)

func (k MarkerKind) String() string {
	if k == MustContain {
		return "must-contain"
	}
	return "must-not-contain"
}

// Marker is a substring rule evaluated against build-log text.
type Marker struct {
	Kind MarkerKind
	Text string
}

// Markers builds the marker set from failure and required substrings.
func Markers(failure, required []string) []Marker {
	out := make([]Marker, 0, len(failure)+len(required))
	for _, f := range failure {
		out = append(out, Marker{Kind: MustNotContain, Text: f})
	}
	for _, r := range required {
		out = append(out, Marker{Kind: MustContain, Text: r})
	}
	return out
}

// Verdict is the result of evaluating markers against one log snapshot.
type Verdict struct {
	Failed bool
	// Violations lists the markers that caused the failure, in marker order.
	Violations []Marker
}

// Reasons renders the violations as human-readable strings.
func (v Verdict) Reasons() []string {
	out := make([]string, 0, len(v.Violations))
	for _, m := range v.Violations {
		if m.Kind == MustContain {
			out = append(out, "missing "+quote(m.Text))
		} else {
			out = append(out, "found "+quote(m.Text))
		}
	}
	return out
}

// Evaluate checks text against markers. MustContain markers are only
// checked when strict is set. Matching is case-sensitive substring search.
func Evaluate(text string, markers []Marker, strict bool) Verdict {
	var v Verdict
	for _, m := range markers {
		switch m.Kind {
		case MustNotContain:
			if strings.Contains(text, m.Text) {
				v.Violations = append(v.Violations, m)
			}
		case MustContain:
			if strict && !strings.Contains(text, m.Text) {
				v.Violations = append(v.Violations, m)
			}
		}
	}
	v.Failed = len(v.Violations) > 0
	return v
}

// ReadChannel returns the full text of a named output channel. A missing
// channel and a failed read are both reported as absent.
func ReadChannel(ctx context.Context, sess host.Session, name string) (string, bool) {
	text, err := sess.ReadOutputChannel(ctx, name)
	if err != nil {
		return "", false
	}
	return text, true
}

func quote(s string) string {
	return `"` + s + `"`
}
