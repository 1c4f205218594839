package models

import "sort"

// GenreSchedule is the most common schedule value for one genre
type GenreSchedule struct {
	Genre    string `json:"genre"`
	Schedule string `json:"schedule"`
	Count    int    `json:"count"`
	Total    int    `json:"total"`
}

// ScheduleReport is returned by every analysis entry point (CLI, upload, DB)
type ScheduleReport struct {
	Source         string          `json:"source"`
	GenreColumn    string          `json:"genre_column"`
	ScheduleColumn string          `json:"schedule_column"`
	RowsRead       int             `json:"rows_read"`
	RowsSkipped    int             `json:"rows_skipped"`
	Results        []GenreSchedule `json:"results"`
}

// SortResults orders results by genre ascending
func (r *ScheduleReport) SortResults() {
	sort.Slice(r.Results, func(i, j int) bool {
		return r.Results[i].Genre < r.Results[j].Genre
	})
}

// UploadResponse is returned after a successful file upload
type UploadResponse struct {
	Message  string         `json:"message"`
	Filename string         `json:"filename"`
	Report   ScheduleReport `json:"report"`
}

// StatusResponse is returned by /api/status
type StatusResponse struct {
	ReportLoaded bool   `json:"report_loaded"`
	Source       string `json:"source,omitempty"`
	Genres       int    `json:"genres"`
	DBConnected  bool   `json:"db_connected"`
}
