// Package schema validates listing drafts and maps rule failures to the
// per-field messages shown next to each form control.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"propertyad/internal/model"
)

// Issue is one violated rule.
type Issue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationFailure carries the violated rules in declaration order.
type ValidationFailure struct {
	Issues []Issue
}

func (f *ValidationFailure) Error() string {
	parts := make([]string, 0, len(f.Issues))
	for _, is := range f.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrorMap keeps the first message for each field; later issues for the same field are dropped.
func (f *ValidationFailure) ErrorMap() map[string]string {
	out := make(map[string]string, len(f.Issues))
	for _, is := range f.Issues {
		if _, seen := out[is.Field]; seen {
			continue
		}
		out[is.Field] = is.Message
	}
	return out
}

// messages holds the user-facing text per field, keyed by rule with "" as the fallback.
var messages = map[model.Field]map[string]string{
	model.FieldType:             {"": "Please select property type"},
	model.FieldBHK:              {"": "Please select BHK"},
	model.FieldBathrooms:        {"": "Please select number of bathrooms"},
	model.FieldFurnishing:       {"": "Please select furnishing type"},
	model.FieldProjectStatus:    {"": "Please select project status"},
	model.FieldListedBy:         {"": "Please select who is listing"},
	model.FieldSuperBuiltupArea: {"": "Super builtup area is required"},
	model.FieldCarpetArea:       {"": "Carpet area is required"},
	model.FieldTotalFloors:      {"": "Total floors is required"},
	model.FieldFloorNo:          {"": "Floor number is required"},
	model.FieldCarParking:       {"": "Please select car parking"},
	model.FieldFacing:           {"": "Please select facing direction"},
	model.FieldProjectName:      {"": "Project name must be less than 70 characters"},
	model.FieldAdTitle: {
		"":    "Ad title is required",
		"max": "Ad title must be less than 70 characters",
	},
	model.FieldDescription: {
		"":    "Description is required",
		"max": "Description must be less than 4096 characters",
	},
	model.FieldPrice: {"": "Price is required"},
	model.FieldImages: {
		"":    "At least one photo is required",
		"max": model.MsgTooManyImages,
	},
	model.FieldState: {"": "Please select a state"},
}

// Message returns the text shown for a failed rule on field.
func Message(field model.Field, rule string) string {
	byRule, ok := messages[field]
	if !ok {
		return "Invalid value"
	}
	if msg, ok := byRule[rule]; ok {
		return msg
	}
	return byRule[""]
}

// Schema checks drafts against the listing rules.
type Schema struct {
	validate *validator.Validate
	options  model.Options
	strict   bool
}

// Option configures a Schema.
type Option func(*Schema)

// WithOptionSets replaces the enumerated option sets used for membership checks.
func WithOptionSets(o model.Options) Option {
	return func(s *Schema) { s.options = o }
}

// WithStrictOptions toggles option-set membership checks. Without them an
// enumerated field only has to be non-empty.
func WithStrictOptions(strict bool) Option {
	return func(s *Schema) { s.strict = strict }
}

// New builds a Schema. Option-set membership is enforced unless disabled.
func New(opts ...Option) *Schema {
	s := &Schema{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		options:  model.DefaultOptions(),
		strict:   true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = s.validate.RegisterValidation("option", s.inOptionSet)

	return s
}

func (s *Schema) inOptionSet(fl validator.FieldLevel) bool {
	if !s.strict {
		return true
	}
	return s.options.Contains(model.Field(fl.Param()), fl.Field().String())
}

// Validate returns the validated listing, or a *ValidationFailure listing every violated rule.
func (s *Schema) Validate(d model.Draft) (*model.Listing, error) {
	err := s.validate.Struct(d)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate draft: %w", err)
		}
		failure := &ValidationFailure{Issues: make([]Issue, 0, len(verrs))}
		for _, fe := range verrs {
			field := model.Field(fe.Field())
			failure.Issues = append(failure.Issues, Issue{
				Field:   string(field),
				Rule:    fe.Tag(),
				Message: Message(field, fe.Tag()),
			})
		}
		return nil, failure
	}

	return toListing(d), nil
}

// toListing assumes d already passed validation.
func toListing(d model.Draft) *model.Listing {
	l := &model.Listing{
		Type:             *d.Type,
		BHK:              *d.BHK,
		Bathrooms:        *d.Bathrooms,
		Furnishing:       *d.Furnishing,
		ProjectStatus:    *d.ProjectStatus,
		ListedBy:         *d.ListedBy,
		SuperBuiltupArea: *d.SuperBuiltupArea,
		CarpetArea:       *d.CarpetArea,
		TotalFloors:      *d.TotalFloors,
		FloorNo:          *d.FloorNo,
		CarParking:       *d.CarParking,
		Facing:           *d.Facing,
		AdTitle:          *d.AdTitle,
		Description:      *d.Description,
		Price:            *d.Price,
		State:            *d.State,
		Images:           append([]model.ImageMeta(nil), d.Images...),
	}
	if d.Maintenance != nil {
		m := *d.Maintenance
		l.Maintenance = &m
	}
	if d.ProjectName != nil {
		l.ProjectName = *d.ProjectName
	}
	return l
}
