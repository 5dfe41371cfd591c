package flatten

// Column names of a flattened row, in output order.
const (
	ColSchoolName     = "School Name"
	ColCity           = "City"
	ColCountry        = "Country"
	ColAddress        = "Address"
	ColCourseName     = "Course Name"
	ColCourseType     = "Course Type"
	ColAgeRange       = "Age Range"
	ColLessonsPerWeek = "Lessons Per Week"
	ColDescription    = "Description"
	ColRequirements   = "Requirements"
	ColDuration       = "Duration"
	ColPrice          = "Price"
	ColPriceValue     = "Price Value"
	ColCurrency       = "Currency"
	ColTotalFee       = "Total Fee"
	ColAccommodations = "Accommodations"
	ColAdditionalFees = "Additional Fees"
	ColTerms          = "Terms"
)

// Columns returns the row field names in output order.
func Columns() []string {
	return []string{
		ColSchoolName, ColCity, ColCountry, ColAddress,
		ColCourseName, ColCourseType, ColAgeRange, ColLessonsPerWeek, ColDescription, ColRequirements,
		ColDuration, ColPrice, ColPriceValue, ColCurrency, ColTotalFee,
		ColAccommodations, ColAdditionalFees, ColTerms,
	}
}

// Row is one flattened (location, course, price) record. Numeric fields
// are rendered as text and are empty when unknown.
type Row struct {
	SchoolName     string `json:"school_name" yaml:"school_name"`
	City           string `json:"city" yaml:"city"`
	Country        string `json:"country" yaml:"country"`
	Address        string `json:"address" yaml:"address"`
	CourseName     string `json:"course_name" yaml:"course_name"`
	CourseType     string `json:"course_type" yaml:"course_type"`
	AgeRange       string `json:"age_range" yaml:"age_range"`
	LessonsPerWeek string `json:"lessons_per_week" yaml:"lessons_per_week"`
	Description    string `json:"description" yaml:"description"`
	Requirements   string `json:"requirements" yaml:"requirements"`
	Duration       string `json:"duration" yaml:"duration"`
	Price          string `json:"price" yaml:"price"`
	PriceValue     string `json:"price_value" yaml:"price_value"`
	Currency       string `json:"currency" yaml:"currency"`
	TotalFee       string `json:"total_fee" yaml:"total_fee"`
	Accommodations string `json:"accommodations" yaml:"accommodations"`
	AdditionalFees string `json:"additional_fees" yaml:"additional_fees"`
	Terms          string `json:"terms" yaml:"terms"`
}

// Field is one named value of a row.
type Field struct {
	Name  string
	Value string
}

// Values returns the row values in the order of Columns.
func (r Row) Values() []string {
	return []string{
		r.SchoolName, r.City, r.Country, r.Address,
		r.CourseName, r.CourseType, r.AgeRange, r.LessonsPerWeek, r.Description, r.Requirements,
		r.Duration, r.Price, r.PriceValue, r.Currency, r.TotalFee,
		r.Accommodations, r.AdditionalFees, r.Terms,
	}
}

// Fields returns the row as ordered name/value pairs.
func (r Row) Fields() []Field {
	cols := Columns()
	vals := r.Values()
	out := make([]Field, len(cols))
	for i := range cols {
		out[i] = Field{Name: cols[i], Value: vals[i]}
	}
	return out
}
