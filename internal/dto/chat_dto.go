package dto

// ChatRequest is one inbound user turn. SessionID is empty on the first
// turn; the service then creates a new session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"required"`
}

// ChatResponse aggregates everything a caller needs to render a turn:
// the message text (concatenated when several stages fire in one turn) and
// the UI affordance flags.
type ChatResponse struct {
	SessionID    string  `json:"session_id"`
	Message      string  `json:"message"`
	ShowUpload   bool    `json:"show_upload"`
	ShowDownload bool    `json:"show_download"`
	DownloadFile *string `json:"download_file,omitempty"`
	SessionEnded bool    `json:"session_ended"`
}

// UploadResponse is returned after a salary-slip upload event has been
// processed.
type UploadResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	ShowDownload bool    `json:"show_download"`
	DownloadFile *string `json:"download_file,omitempty"`
	SessionEnded bool    `json:"session_ended"`
}

// ResetRequest discards a session.
type ResetRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}
