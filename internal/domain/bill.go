package domain

import "time"

// Bill is a legislative bill as delivered by the upstream source.
type Bill struct {
	ID               string
	Identifier       string
	Title            string
	Abstract         string
	Session          string
	Jurisdiction     string
	Classification   []string
	Subjects         []string
	OriginChamber    string
	LatestAction     string
	LatestActionDate string
	FirstActionDate  string
	SourceURL        string
	UpdatedAt        time.Time
	Sponsors         []PersonStub
}

// PersonStub is the minimal person data embedded in a bill sponsorship.
type PersonStub struct {
	ID       string
	Name     string
	Party    string
	Chamber  string
	District string
	Title    string
}

// Legislator is the detailed person record fetched in batches.
type Legislator struct {
	ID           string
	Name         string
	GivenName    string
	FamilyName   string
	Party        string
	Chamber      string
	District     string
	Jurisdiction string
	Title        string
	Email        string
	Phone        string
	Address      string
	Links        []string
}

// Session describes one legislative session of a jurisdiction.
type Session struct {
	Identifier     string `json:"identifier"`
	Name           string `json:"name"`
	Classification string `json:"classification,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
}

// Jurisdiction is a state-level legislature.
type Jurisdiction struct {
	ID       string
	Name     string
	Chambers int
	Sessions []Session
}

// Status enumerates inferred bill statuses.
type Status string

const (
	StatusIntroduced   Status = "Introduced"
	StatusInCommittee  Status = "In Committee"
	StatusPassedHouse  Status = "Passed House"
	StatusPassedSenate Status = "Passed Senate"
	StatusEnacted      Status = "Enacted"
	StatusVetoed       Status = "Vetoed"
	StatusFailed       Status = "Failed"
)

// Category enumerates coarse subject categories.
type Category string

const (
	CategoryHealth         Category = "Health"
	CategoryEducation      Category = "Education"
	CategoryEnvironment    Category = "Environment"
	CategoryEconomy        Category = "Economy"
	CategoryJustice        Category = "Justice"
	CategoryTransportation Category = "Transportation"
	CategoryOther          Category = "Other"
)
