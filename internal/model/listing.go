package model

import (
	"errors"
	"time"
)

// Field names a draft field. Values match the JSON keys used by the form.
type Field string

const (
	FieldType             Field = "type"
	FieldBHK              Field = "bhk"
	FieldBathrooms        Field = "bathrooms"
	FieldFurnishing       Field = "furnishing"
	FieldProjectStatus    Field = "projectStatus"
	FieldListedBy         Field = "listedBy"
	FieldSuperBuiltupArea Field = "superBuiltupArea"
	FieldCarpetArea       Field = "carpetArea"
	FieldMaintenance      Field = "maintenance"
	FieldTotalFloors      Field = "totalFloors"
	FieldFloorNo          Field = "floorNo"
	FieldCarParking       Field = "carParking"
	FieldFacing           Field = "facing"
	FieldProjectName      Field = "projectName"
	FieldAdTitle          Field = "adTitle"
	FieldDescription      Field = "description"
	FieldPrice            Field = "price"
	FieldImages           Field = "images"
	FieldState            Field = "state"
)

// Text limits
const (
	MaxProjectNameLength = 70
	MaxAdTitleLength     = 70
	MaxDescriptionLength = 4096
)

// Draft is the in-progress listing held by a form. Any subset of fields may be set.
// Field order is the order rules are checked in.
type Draft struct {
	Type             *string     `json:"type,omitempty" validate:"required,min=1,option=type"`
	BHK              *string     `json:"bhk,omitempty" validate:"required,min=1,option=bhk"`
	Bathrooms        *string     `json:"bathrooms,omitempty" validate:"required,min=1,option=bathrooms"`
	Furnishing       *string     `json:"furnishing,omitempty" validate:"required,min=1,option=furnishing"`
	ProjectStatus    *string     `json:"projectStatus,omitempty" validate:"required,min=1,option=projectStatus"`
	ListedBy         *string     `json:"listedBy,omitempty" validate:"required,min=1,option=listedBy"`
	SuperBuiltupArea *int64      `json:"superBuiltupArea,omitempty" validate:"required,min=1"`
	CarpetArea       *int64      `json:"carpetArea,omitempty" validate:"required,min=1"`
	Maintenance      *int64      `json:"maintenance,omitempty"`
	TotalFloors      *int64      `json:"totalFloors,omitempty" validate:"required,min=1"`
	FloorNo          *int64      `json:"floorNo,omitempty" validate:"required,min=0"`
	CarParking       *string     `json:"carParking,omitempty" validate:"required,min=1,option=carParking"`
	Facing           *string     `json:"facing,omitempty" validate:"required,min=1,option=facing"`
	ProjectName      *string     `json:"projectName,omitempty" validate:"omitempty,max=70"`
	AdTitle          *string     `json:"adTitle,omitempty" validate:"required,min=1,max=70"`
	Description      *string     `json:"description,omitempty" validate:"required,min=1,max=4096"`
	Price            *int64      `json:"price,omitempty" validate:"required,min=1"`
	Images           []ImageMeta `json:"images" validate:"min=1,max=20"`
	State            *string     `json:"state,omitempty" validate:"required,min=1,option=state"`
}

// Listing is a draft that passed every schema rule.
type Listing struct {
	ID               string      `json:"id,omitempty" db:"id"`
	Type             string      `json:"type" db:"property_type"`
	BHK              string      `json:"bhk" db:"bhk"`
	Bathrooms        string      `json:"bathrooms" db:"bathrooms"`
	Furnishing       string      `json:"furnishing" db:"furnishing"`
	ProjectStatus    string      `json:"projectStatus" db:"project_status"`
	ListedBy         string      `json:"listedBy" db:"listed_by"`
	SuperBuiltupArea int64       `json:"superBuiltupArea" db:"super_builtup_area"`
	CarpetArea       int64       `json:"carpetArea" db:"carpet_area"`
	Maintenance      *int64      `json:"maintenance,omitempty" db:"maintenance"`
	TotalFloors      int64       `json:"totalFloors" db:"total_floors"`
	FloorNo          int64       `json:"floorNo" db:"floor_no"`
	CarParking       string      `json:"carParking" db:"car_parking"`
	Facing           string      `json:"facing" db:"facing"`
	ProjectName      string      `json:"projectName,omitempty" db:"project_name"`
	AdTitle          string      `json:"adTitle" db:"ad_title"`
	Description      string      `json:"description" db:"description"`
	Price            int64       `json:"price" db:"price"`
	State            string      `json:"state" db:"state"`
	CreatedAt        time.Time   `json:"createdAt,omitempty" db:"created_at"`
	Images           []ImageMeta `json:"images" db:"-"`
}

// Form errors
var (
	ErrUnknownField   = errors.New("unknown field")
	ErrFormSubmitting = errors.New("form is already submitting")
	ErrFormNotFound   = errors.New("form not found")
	ErrListingMissing = errors.New("listing not found")
)

// Error codes for HTTP responses
const (
	CodeUnknownField     = "UNKNOWN_FIELD"
	CodeSubmitting       = "SUBMISSION_IN_PROGRESS"
	CodeValidationFailed = "VALIDATION_FAILED"
)

// IsNumericField reports whether the field holds an integer value.
func IsNumericField(f Field) bool {
	switch f {
	case FieldSuperBuiltupArea, FieldCarpetArea, FieldMaintenance, FieldTotalFloors, FieldFloorNo, FieldPrice:
		return true
	}
	return false
}

// Clone returns a deep copy so callers can hand a draft to another goroutine.
func (d Draft) Clone() Draft {
	out := d
	out.Type = cloneString(d.Type)
	out.BHK = cloneString(d.BHK)
	out.Bathrooms = cloneString(d.Bathrooms)
	out.Furnishing = cloneString(d.Furnishing)
	out.ProjectStatus = cloneString(d.ProjectStatus)
	out.ListedBy = cloneString(d.ListedBy)
	out.SuperBuiltupArea = cloneInt(d.SuperBuiltupArea)
	out.CarpetArea = cloneInt(d.CarpetArea)
	out.Maintenance = cloneInt(d.Maintenance)
	out.TotalFloors = cloneInt(d.TotalFloors)
	out.FloorNo = cloneInt(d.FloorNo)
	out.CarParking = cloneString(d.CarParking)
	out.Facing = cloneString(d.Facing)
	out.ProjectName = cloneString(d.ProjectName)
	out.AdTitle = cloneString(d.AdTitle)
	out.Description = cloneString(d.Description)
	out.Price = cloneInt(d.Price)
	out.State = cloneString(d.State)
	out.Images = append([]ImageMeta(nil), d.Images...)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
