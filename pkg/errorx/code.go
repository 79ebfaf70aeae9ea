package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Execution codes
	InvalidTransition   Code = 200001
	InvalidState        Code = 200002
	RetryableContention Code = 200003

	// Approval token codes
	TokenNotFound       Code = 300001
	TokenAlreadyUsed    Code = 300002
	InvalidApprovalLink Code = 300003

	// Notification codes
	NotificationFailed Code = 400001
)

// InvalidApprovalLinkMessage is the only failure message shown to anonymous
// approvers, so they cannot tell an unknown token from a used one.
const InvalidApprovalLinkMessage = "link invalid or already used"
