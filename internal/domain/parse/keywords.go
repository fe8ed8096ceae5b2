package parse

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
)

// DefaultKeywords is the built-in negative-indicator table. It is
// configuration data, not logic: deployments with their own vocabulary
// override it with a YAML file via LoadKeywords.
var DefaultKeywords = []string{
	"refund",
	"return",
	"overpaid",
	"damaged",
	"deduct",
	"rebate",
	"退",
	"坏",
	"扣",
}

type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywords reads a negative-keyword table from a YAML file of the form:
//
//	keywords:
//	  - refund
//	  - 退款
func LoadKeywords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read keyword file %q: %w", path, err)
	}

	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("could not parse keyword file %q: %w", path, err)
	}
	if len(kf.Keywords) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("keyword file %q defines no keywords", path))
	}
	return kf.Keywords, nil
}
