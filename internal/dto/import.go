package dto

// ImportResult summarises one spreadsheet import run.
type ImportResult struct {
	Message    string   `json:"message"`
	Processed  int      `json:"processed"`
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	ErrorCount int      `json:"errorCount"`
	Errors     []string `json:"errors"`
}
