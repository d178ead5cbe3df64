package domain

type Activity struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Notes     string  `json:"notes"`
	StartTime string  `json:"startTime"`
	EndTime   *string `json:"endTime"`
}
