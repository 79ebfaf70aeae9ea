package model

type AdvanceExecutionRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	// Override allows an approver to set any status, including going back.
	Override bool `json:"override"`
}

type AdvanceExecutionResponse struct {
	Status string `json:"status"`
}

type GetExecutionStatusRequest struct {
	ID string `json:"id"`
}

type GetExecutionStatusResponse struct {
	Status string `json:"status"`
}

type GetMyExecutionsRequest struct{}

type GetMyExecutionsResponse struct {
	Executions []Execution `json:"executions"`
}

type UpdateExecutionReportRequest struct {
	ID   string `json:"id"`
	Memo string `json:"memo"`
}

type UpdateExecutionReportResponse struct{}

// UploadExecutionPhotoRequest is sent as a multipart form with the fields
// execution_id and photo.
type UploadExecutionPhotoRequest struct{}

type UploadExecutionPhotoResponse struct {
	PhotoReference string `json:"photo_reference"`
}
