package wizard

import (
	"io"
	"strings"
)

// Field names a draft value. The names match the JSON keys clients send.
type Field string

const (
	FullName        Field = "full_name"
	Email           Field = "email"
	Phone           Field = "phone"
	NationalID      Field = "national_id"
	DateOfBirth     Field = "date_of_birth"
	Gender          Field = "gender"
	County          Field = "county"
	SubCounty       Field = "sub_county"
	Division        Field = "division"
	Location        Field = "location"
	SubLocation     Field = "sub_location"
	Village         Field = "village"
	SchoolName      Field = "school_name"
	SchoolLevel     Field = "school_level"
	ClassYear       Field = "class_year"
	ApplicationType Field = "application_type"
	HouseholdSize   Field = "household_size"
	MonthlyIncome   Field = "monthly_income"
	RequestedAmount Field = "requested_amount"
	Reason          Field = "reason"
)

var knownFields = map[Field]bool{
	FullName: true, Email: true, Phone: true, NationalID: true, DateOfBirth: true, Gender: true,
	County: true, SubCounty: true, Division: true, Location: true, SubLocation: true, Village: true,
	SchoolName: true, SchoolLevel: true, ClassYear: true,
	ApplicationType: true, HouseholdSize: true, MonthlyIncome: true, RequestedAmount: true, Reason: true,
}

// ParseField returns the package constant for name, never name itself,
// so the result stays valid after the caller's buffer is reused.
func ParseField(name string) (Field, bool) {
	for f := range knownFields {
		if string(f) == name {
			return f, true
		}
	}
	return Field(strings.Clone(name)), false
}

// DocumentType is a supporting document slot on the draft.
type DocumentType string

const (
	IDDocument          DocumentType = "id_document"
	SchoolFeesStructure DocumentType = "school_fees_structure"
	IncomeCertificate   DocumentType = "income_certificate"
	BirthCertificate    DocumentType = "birth_certificate"
)

// DocumentOrder is the order documents are uploaded in.
var DocumentOrder = []DocumentType{IDDocument, SchoolFeesStructure, IncomeCertificate, BirthCertificate}

var documentLabels = map[DocumentType]string{
	IDDocument:          "ID document",
	SchoolFeesStructure: "School fees structure",
	IncomeCertificate:   "Income certificate",
	BirthCertificate:    "Birth certificate",
}

func (d DocumentType) Label() string {
	if label, ok := documentLabels[d]; ok {
		return label
	}
	return string(d)
}

// ParseDocumentType returns one of the DocumentOrder constants for name.
func ParseDocumentType(name string) (DocumentType, bool) {
	for _, d := range DocumentOrder {
		if string(d) == name {
			return d, true
		}
	}
	return DocumentType(strings.Clone(name)), false
}

// File is an attached document waiting to be uploaded.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type Step struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	Fields    []Field        `json:"fields"`
	Documents []DocumentType `json:"documents,omitempty"`
}

const (
	FirstStep = 1
	LastStep  = 5
)

// Steps holds the required items of each step. Optional fields
// (monthly_income, requested_amount) and optional documents are not listed.
var Steps = []Step{
	{Number: 1, Title: "Personal Information", Fields: []Field{FullName, Email, Phone, NationalID, DateOfBirth, Gender}},
	{Number: 2, Title: "Location Details", Fields: []Field{County, SubCounty, Division, Location, SubLocation, Village}},
	{Number: 3, Title: "Academic Information", Fields: []Field{SchoolName, SchoolLevel, ClassYear}},
	{Number: 4, Title: "Application Details", Fields: []Field{ApplicationType, HouseholdSize, Reason}},
	{Number: 5, Title: "Documents", Documents: []DocumentType{IDDocument, SchoolFeesStructure}},
}

func stepAt(n int) (Step, bool) {
	if n < FirstStep || n > LastStep {
		return Step{}, false
	}
	return Steps[n-1], true
}
