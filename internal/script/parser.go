package script

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	rwerrors "github.com/regweaver/regweaver/pkg/errors"
)

var (
	yamlLineRegex = regexp.MustCompile(`line (\d+)`)

	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Parse loads a declarative script file from disk and checks its document
// shape. Action-level validation against the registry happens later, at the
// start of execution.
func Parse(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rwerrors.NewParseError(path, 0, err)
	}
	return ParseBytes(path, data)
}

// ParseBytes decodes declarative script content. The path is used only for
// error reporting.
func ParseBytes(path string, data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, rwerrors.NewParseError(path, extractLine(err), err)
	}
	s.Kind = Declarative

	if err := validateDocument(&s); err != nil {
		return nil, rwerrors.NewParseError(path, 0, err)
	}

	return &s, nil
}

func validateDocument(s *Script) error {
	if err := validatorInstance().Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fieldErr := fieldErrs[0]
			switch fieldErr.Tag() {
			case "required", "min":
				return fmt.Errorf("field %s is required", fieldErr.Field())
			default:
				return fmt.Errorf("field %s is invalid (%s)", fieldErr.Field(), fieldErr.Tag())
			}
		}
		return err
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
