package model

// StartExamRequest begins an exam session for the paper.
type StartExamRequest struct {
	PaperID string `json:"paper_id" binding:"required,uuid"`
}

// AnswerTextRequest replaces the text of the current question's answer.
type AnswerTextRequest struct {
	Text string `json:"text"`
}

// AnswerImageRequest attaches an image to the current question's answer,
// as a base64 data URI.
type AnswerImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// TableCreateRequest inserts an empty table into the current answer.
type TableCreateRequest struct {
	Rows int `json:"rows" binding:"required,min=1,max=20"`
	Cols int `json:"cols" binding:"required,min=1,max=10"`
}

// TableCellRequest writes a single table cell.
type TableCellRequest struct {
	Row   int    `json:"row" binding:"min=0"`
	Col   int    `json:"col" binding:"min=0"`
	Value string `json:"value"`
}

// NavigateRequest moves the question cursor by a relative offset.
type NavigateRequest struct {
	Delta int `json:"delta" binding:"required"`
}
