package response

// ErrCode is a machine-readable error identifier.
type ErrCode string

const (
	ErrCodeValidation         ErrCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized       ErrCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrCode = "FORBIDDEN"
	ErrCodeUserNotFound       ErrCode = "USER_NOT_FOUND"
	ErrCodeInvalidPassword    ErrCode = "INVALID_PASSWORD"
	ErrCodePaperNotFound      ErrCode = "PAPER_NOT_FOUND"
	ErrCodePaperUnavailable   ErrCode = "PAPER_UNAVAILABLE"
	ErrCodeQuestionNotFound   ErrCode = "QUESTION_NOT_FOUND"
	ErrCodeSubmissionNotFound ErrCode = "SUBMISSION_NOT_FOUND"
	ErrCodeSessionActive      ErrCode = "SESSION_ACTIVE"
	ErrCodeNoSession          ErrCode = "NO_SESSION"
	ErrCodeSubmitInProgress   ErrCode = "SUBMIT_IN_PROGRESS"
	ErrCodeNoQuestions        ErrCode = "NO_QUESTIONS"
	ErrCodeImageTooLarge      ErrCode = "IMAGE_TOO_LARGE"
	ErrCodeFileTooLarge       ErrCode = "FILE_TOO_LARGE"
	ErrCodeNoTable            ErrCode = "NO_TABLE"
	ErrCodeTableExists        ErrCode = "TABLE_EXISTS"
	ErrCodeCellOutOfRange     ErrCode = "CELL_OUT_OF_RANGE"
	ErrCodeExtractDisabled    ErrCode = "EXTRACT_DISABLED"
	ErrCodeExtractFailed      ErrCode = "EXTRACT_FAILED"
	ErrCodeInternal           ErrCode = "INTERNAL_ERROR"
)

var errMessages = map[ErrCode]string{
	ErrCodeValidation:         "Request validation failed",
	ErrCodeUnauthorized:       "Authentication required",
	ErrCodeForbidden:          "You do not have access to this resource",
	ErrCodeUserNotFound:       "Account not found",
	ErrCodeInvalidPassword:    "Incorrect password",
	ErrCodePaperNotFound:      "Exam paper not found",
	ErrCodePaperUnavailable:   "Exam paper is not available at this time",
	ErrCodeQuestionNotFound:   "Question not found",
	ErrCodeSubmissionNotFound: "Submission not found",
	ErrCodeSessionActive:      "An exam session is already in progress",
	ErrCodeNoSession:          "No active exam session",
	ErrCodeSubmitInProgress:   "Submission is already being processed",
	ErrCodeNoQuestions:        "Exam paper has no questions",
	ErrCodeImageTooLarge:      "Answer image exceeds the size limit",
	ErrCodeFileTooLarge:       "Attached file exceeds the size limit",
	ErrCodeNoTable:            "Answer has no table",
	ErrCodeTableExists:        "Answer already has a table",
	ErrCodeCellOutOfRange:     "Table cell is out of range",
	ErrCodeExtractDisabled:    "Automatic extraction is not configured",
	ErrCodeExtractFailed:      "Could not extract questions from the document",
	ErrCodeInternal:           "An internal error occurred",
}

// GetMessage returns the human-readable message for an error code.
func GetMessage(code ErrCode) string {
	if msg, ok := errMessages[code]; ok {
		return msg
	}
	return "Unknown error"
}
