package screening

// Field is one piece of candidate information collected before the
// technical questions.
type Field string

const (
	FullName        Field = "full_name"
	Email           Field = "email"
	Phone           Field = "phone"
	YearsExperience Field = "years_experience"
	DesiredPosition Field = "desired_position"
	CurrentLocation Field = "current_location"
	TechStack       Field = "tech_stack"
)

// Fields lists the fields in the order they are asked for.
var Fields = []Field{
	FullName,
	Email,
	Phone,
	YearsExperience,
	DesiredPosition,
	CurrentLocation,
	TechStack,
}

var fieldLabels = map[Field]string{
	FullName:        "full name",
	Email:           "email address",
	Phone:           "phone number",
	YearsExperience: "years of professional experience",
	DesiredPosition: "desired position",
	CurrentLocation: "current location",
	TechStack:       "detailed tech stack (programming languages, frameworks, databases, tools)",
}

// Label is the human wording used when asking for the field.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Valid reports whether f is one of Fields.
func (f Field) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}
