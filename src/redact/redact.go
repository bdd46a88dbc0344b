// Package redact masks secrets in build-log text before it leaves the
// process, using the gitleaks default rule set.
package redact

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Mask replaces every detected secret.
const Mask = "REDACTED"

// Redactor masks secrets found by gitleaks.
type Redactor struct {
	once     sync.Once
	detector *detect.Detector
	err      error
}

// New returns a Redactor. The gitleaks detector is built on first use.
func New() *Redactor {
	return &Redactor{}
}

func (r *Redactor) init() error {
	r.once.Do(func() {
		r.detector, r.err = detect.NewDetectorDefaultConfig()
	})
	return r.err
}

// Redact returns text with every detected secret replaced by Mask. When
// the detector cannot be built it returns an error and no text.
func (r *Redactor) Redact(text string) (string, error) {
	if err := r.init(); err != nil {
		return "", fmt.Errorf("redact: building secret detector: %w", err)
	}
	if text == "" {
		return text, nil
	}
	hits := r.detector.DetectBytes([]byte(text))
	if len(hits) == 0 {
		return text, nil
	}

	secrets := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Secret != "" {
			secrets = append(secrets, h.Secret)
		}
	}
	// Longest first so a secret containing another is masked whole.
	sort.Slice(secrets, func(i, j int) bool { return len(secrets[i]) > len(secrets[j]) })
	for _, s := range secrets {
		text = strings.ReplaceAll(text, s, Mask)
	}
	return text, nil
}

// Err reports why the detector could not be built, if it could not.
func (r *Redactor) Err() error {
	return r.init()
}
