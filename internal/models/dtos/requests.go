package dtos

// FlightIntakeRequest is the validated payload from the intake form. The
// form collaborator owns validation; the store trusts it.
type FlightIntakeRequest struct {
	FlightNumber string `json:"flight_number"`
	Airline      string `json:"airline"`
	Destination  string `json:"destination"`
	ETA          string `json:"eta"`
	ETD          string `json:"etd"`
	Notes        string `json:"notes"`
}

// ActivateRequest carries the explicit switch confirmation required when
// another flight is already in progress.
type ActivateRequest struct {
	ConfirmSwitch bool `json:"confirm_switch"`
}

// OperationEventRequest records one timestamp for a turnaround task. Field
// is "start" or "end"; instantaneous tasks ignore it and write both.
type OperationEventRequest struct {
	Task  string `json:"task"`
	Field string `json:"field"`
	Time  string `json:"time"`
}

// NotesRequest replaces the free-text notes of the active flight.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// ThemeRequest sets the dashboard theme preference.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// DashboardLinkRequest asks for a presigned dashboard token for a station.
type DashboardLinkRequest struct {
	Station string `json:"station"`
}
