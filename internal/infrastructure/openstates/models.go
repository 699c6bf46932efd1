package openstates

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

type pagination struct {
	PerPage    int `json:"per_page"`
	Page       int `json:"page"`
	MaxPage    int `json:"max_page"`
	TotalItems int `json:"total_items"`
}

type billsResponse struct {
	Results    []apiBill  `json:"results"`
	Pagination pagination `json:"pagination"`
}

type apiBill struct {
	ID                      string           `json:"id"`
	Identifier              string           `json:"identifier"`
	Title                   string           `json:"title"`
	Session                 string           `json:"session"`
	Classification          []string         `json:"classification"`
	Subject                 []string         `json:"subject"`
	Jurisdiction            apiRef           `json:"jurisdiction"`
	FromOrganization        apiRef           `json:"from_organization"`
	LatestActionDescription string           `json:"latest_action_description"`
	LatestActionDate        string           `json:"latest_action_date"`
	FirstActionDate         string           `json:"first_action_date"`
	UpdatedAt               string           `json:"updated_at"`
	OpenstatesURL           string           `json:"openstates_url"`
	Sponsorships            []apiSponsorship `json:"sponsorships"`
	Abstracts               []apiAbstract    `json:"abstracts"`
}

type apiRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
}

type apiSponsorship struct {
	Name           string     `json:"name"`
	EntityType     string     `json:"entity_type"`
	Primary        bool       `json:"primary"`
	Classification string     `json:"classification"`
	Person         *apiPerson `json:"person"`
}

type apiAbstract struct {
	Abstract string `json:"abstract"`
	Note     string `json:"note"`
}

type peopleResponse struct {
	Results    []apiPerson `json:"results"`
	Pagination pagination  `json:"pagination"`
}

type apiPerson struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	GivenName    string      `json:"given_name"`
	FamilyName   string      `json:"family_name"`
	Party        string      `json:"party"`
	Email        string      `json:"email"`
	CurrentRole  *apiRole    `json:"current_role"`
	Jurisdiction *apiRef     `json:"jurisdiction"`
	Offices      []apiOffice `json:"offices"`
	Links        []apiLink   `json:"links"`
}

type apiRole struct {
	Title             string     `json:"title"`
	OrgClassification string     `json:"org_classification"`
	District          flexString `json:"district"`
}

type apiOffice struct {
	Classification string `json:"classification"`
	Address        string `json:"address"`
	Voice          string `json:"voice"`
}

type apiLink struct {
	URL  string `json:"url"`
	Note string `json:"note"`
}

type jurisdictionResponse struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Classification      string       `json:"classification"`
	LegislativeSessions []apiSession `json:"legislative_sessions"`
	Organizations       []apiRef     `json:"organizations"`
}

type apiSession struct {
	Identifier     string `json:"identifier"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

// flexString accepts a JSON string or number; districts arrive as either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(string(data))
	return nil
}
