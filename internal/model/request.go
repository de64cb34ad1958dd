package model

// Upload is the raw spreadsheet handed over by the HTTP collaborator.
type Upload struct {
	Filename string
	Data     []byte
}

type IndividualRequest struct {
	EmployeeID string
	Formula    string
	Params     ScenarioParams
}

type CompanyRequest struct {
	Formula string
	Params  ScenarioParams
}
