package discovery

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// manifest is the on-disk shape of a plan file.
type manifest struct {
	Plans []planSpec `yaml:"plans" validate:"required,min=1,dive"`
}

type planSpec struct {
	Description string      `yaml:"description"`
	Skip        bool        `yaml:"skip"`
	Points      []pointSpec `yaml:"points" validate:"dive"`
}

type pointSpec struct {
	Description string   `yaml:"description"`
	Run         []string `yaml:"run" validate:"required,min=1,dive,required"`
	Dir         string   `yaml:"dir" validate:"reldir"`
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		// Working directories are relative to the manifest and may not
		// climb out of it.
		_ = v.RegisterValidation("reldir", func(fl validator.FieldLevel) bool {
			dir := fl.Field().String()
			if dir == "" {
				return true
			}
			if filepath.IsAbs(dir) {
				return false
			}
			clean := filepath.Clean(dir)
			return clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
		})

		validateInst = v
	})
	return validateInst
}

// parseManifest decodes and validates one plan file. Unknown keys are
// rejected so that typos do not silently drop test points.
func parseManifest(data []byte) (*manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := &manifest{}
	if err := dec.Decode(m); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty manifest")
		}
		return nil, errors.Wrap(err, "parsing manifest")
	}
	if err := validatorInstance().Struct(m); err != nil {
		return nil, errors.Wrap(err, "validating manifest")
	}
	return m, nil
}
