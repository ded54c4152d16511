package flows

import "github.com/dmitrijs2005/tokenbot/internal/conversation"

const (
	FlowAccount conversation.FlowID = "account"
	FlowRefund  conversation.FlowID = "refund"
	FlowAdmin   conversation.FlowID = "admin"
)

const (
	StepAwaitingToken                 conversation.Step = "awaiting_token"
	StepAwaitingDuplicateConfirmation conversation.Step = "awaiting_duplicate_confirmation"
	StepAwaitingOrderID               conversation.Step = "awaiting_order_id"
	StepAwaitingPhotoChoice           conversation.Step = "awaiting_photo_choice"
	StepAwaitingPhoto                 conversation.Step = "awaiting_photo"
	StepAwaitingText                  conversation.Step = "awaiting_text"
	StepAwaitingConfirmation          conversation.Step = "awaiting_confirmation"
	StepAwaitingTargetUserID          conversation.Step = "awaiting_target_user_id"
)

// Button payloads. Clients that already have keyboards on screen send these
// literals back, so they must not change.
const (
	PayloadMenu          = "menu"
	PayloadProfile       = "profile"
	PayloadAddAccount    = "add-account"
	PayloadRefund        = "refund"
	PayloadAdmin         = "admin"
	PayloadAdminGrant    = "admin-grant"
	PayloadAdminRefunds  = "admin-refunds"
	PayloadAdminStats    = "admin-stats"
	PayloadConfirmYes    = "confirm-yes"
	PayloadConfirmNo     = "confirm-no"
	PayloadWithPhoto     = "with-photo"
	PayloadWithoutPhoto  = "without-photo"
	PayloadRefundConfirm = "refund-confirm"
	PayloadRefundCancel  = "refund-cancel"
)

// Commands, without the leading slash.
const (
	CommandStart  = "start"
	CommandMenu   = "menu"
	CommandRefund = "refund"
	CommandCancel = "cancel"
)

// Buffer fields.
const (
	fieldToken    = "token"
	fieldOrderID  = "order_id"
	fieldHasPhoto = "has_photo"
	fieldPhoto    = "photo"
	fieldMessage  = "message"
	fieldAction   = "action"
)

const (
	actionGrant   = "grant"
	actionRefunds = "refunds"
)
