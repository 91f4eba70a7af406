package model

// Options lists the choices the form presents for each enumerated field.
type Options struct {
	PropertyTypes []string `json:"type"`
	BHK           []string `json:"bhk"`
	Bathrooms     []string `json:"bathrooms"`
	Furnishing    []string `json:"furnishing"`
	ProjectStatus []string `json:"projectStatus"`
	ListedBy      []string `json:"listedBy"`
	CarParking    []string `json:"carParking"`
	Facing        []string `json:"facing"`
	States        []string `json:"state"`
}

// DefaultOptions returns the option sets for "For Sale: Houses & Apartments".
func DefaultOptions() Options {
	return Options{
		PropertyTypes: []string{
			"Flats / Apartments",
			"Independent / Builder Floors",
			"Farm House",
			"House & Villa",
		},
		BHK:        []string{"1", "2", "3", "4", "4+"},
		Bathrooms:  []string{"1", "2", "3", "4", "4+"},
		Furnishing: []string{"Furnished", "Semi-Furnished", "Unfurnished"},
		ProjectStatus: []string{
			"New Launch",
			"Ready to Move",
			"Under Construction",
		},
		ListedBy:   []string{"Builder", "Dealer", "Owner"},
		CarParking: []string{"0", "1", "2", "3", "3+"},
		Facing: []string{
			"East",
			"North",
			"North-East",
			"North-West",
			"South",
			"South-East",
			"South-West",
			"West",
		},
		States: []string{
			"Andaman & Nicobar Islands",
			"Andhra Pradesh",
			"Arunachal Pradesh",
			"Assam",
			"Bihar",
			"Chandigarh",
			"Chhattisgarh",
			"Dadra & Nagar Haveli",
			"Daman & Diu",
			"Delhi",
			"Goa",
			"Gujarat",
			"Haryana",
			"Himachal Pradesh",
			"Jammu & Kashmir",
			"Jharkhand",
			"Karnataka",
			"Kerala",
			"Lakshadweep",
			"Madhya Pradesh",
			"Maharashtra",
			"Manipur",
			"Meghalaya",
			"Mizoram",
			"Nagaland",
			"Odisha",
			"Pondicherry",
			"Punjab",
			"Rajasthan",
			"Sikkim",
			"Tamil Nadu",
			"Telangana",
			"Tripura",
			"Uttar Pradesh",
			"Uttaranchal",
			"West Bengal",
		},
	}
}

// For returns the option set for an enumerated field, or nil when the field is free-form.
func (o Options) For(f Field) []string {
	switch f {
	case FieldType:
		return o.PropertyTypes
	case FieldBHK:
		return o.BHK
	case FieldBathrooms:
		return o.Bathrooms
	case FieldFurnishing:
		return o.Furnishing
	case FieldProjectStatus:
		return o.ProjectStatus
	case FieldListedBy:
		return o.ListedBy
	case FieldCarParking:
		return o.CarParking
	case FieldFacing:
		return o.Facing
	case FieldState:
		return o.States
	}
	return nil
}

// Contains reports whether value is one of the options for f.
func (o Options) Contains(f Field, value string) bool {
	for _, opt := range o.For(f) {
		if opt == value {
			return true
		}
	}
	return false
}
