package usecase

// Column names written to the record store.
const (
	FieldBillID          = "Bill ID"
	FieldBillNumber      = "Bill Number"
	FieldSlug            = "Slug"
	FieldTitle           = "Title"
	FieldSummary         = "Summary"
	FieldLastAction      = "Last Action"
	FieldStatus          = "Status"
	FieldState           = "State"
	FieldClassification  = "Classification"
	FieldIntroducedDate  = "Introduced Date"
	FieldLastActionDate  = "Last Action Date"
	FieldChamber         = "Chamber"
	FieldSession         = "Session"
	FieldSourceURL       = "Source URL"
	FieldSponsors        = "Sponsors"
	FieldSubjects        = "Subjects"
	FieldLegislatorID    = "OpenStates ID"
	FieldName            = "Name"
	FieldFirstName       = "First Name"
	FieldLastName        = "Last Name"
	FieldParty           = "Party"
	FieldDistrict        = "District"
	FieldPhone           = "Phone"
	FieldAddress         = "Address"
	FieldEmail           = "Email"
	FieldWebsite         = "Website"
	FieldCategory        = "Category"
	FieldAbbreviation    = "Abbreviation"
	FieldLegislatureType = "Legislature Type"
	FieldSessions        = "Sessions"
)

// maxLinks caps the sponsor and subject link lists of a bill record.
const maxLinks = 10

// Tables names the collections of the record store.
type Tables struct {
	Bills       string
	Legislators string
	Subjects    string
	States      string
}

// DefaultTables are used for any empty table name.
var DefaultTables = Tables{
	Bills:       "Bills",
	Legislators: "Legislators",
	Subjects:    "Subjects",
	States:      "States",
}

func (t Tables) withDefaults() Tables {
	if t.Bills == "" {
		t.Bills = DefaultTables.Bills
	}
	if t.Legislators == "" {
		t.Legislators = DefaultTables.Legislators
	}
	if t.Subjects == "" {
		t.Subjects = DefaultTables.Subjects
	}
	if t.States == "" {
		t.States = DefaultTables.States
	}
	return t
}

// KeyFields lists the reconciliation key columns of each collection.
func (t Tables) KeyFields() map[string][]string {
	t = t.withDefaults()
	return map[string][]string{
		t.Bills:       {FieldBillID},
		t.Legislators: {FieldLegislatorID},
		t.Subjects:    {FieldName},
		t.States:      {FieldAbbreviation, FieldName},
	}
}

func capIDs(ids []string) []string {
	if len(ids) > maxLinks {
		ids = ids[:maxLinks]
	}
	if ids == nil {
		return []string{}
	}
	return ids
}

func setIf(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
