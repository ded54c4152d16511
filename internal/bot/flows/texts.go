package flows

const (
	textMenu             = "Main menu. Choose an action:"
	textEnterToken       = "Send the account token."
	textEmptyToken       = "The token cannot be empty. Send the account token."
	textDuplicateToken   = "This token has already been added. Check it again anyway?"
	textCancelled        = "Cancelled."
	textChecking         = "Checking the account, please wait..."
	textAccountAdded     = "Account checked:"
	textCouldNotParse    = "Could not parse the response (status %d)."
	textRefundDenied     = "Access denied: you are not allowed to submit refunds."
	textEnterOrderID     = "Send the order id."
	textEmptyOrderID     = "The order id cannot be empty. Send the order id."
	textPhotoChoice      = "Do you want to attach a photo?"
	textSendPhoto        = "Send the photo."
	textPhotoRequired    = "A photo is required. Send the photo."
	textPhotoFailed      = "Could not save the photo. Send it again."
	textEnterMessage     = "Describe the problem."
	textEmptyMessage     = "The description cannot be empty. Describe the problem."
	textReview           = "Please review your request:"
	textRefundSent       = "Refund request sent (request id %s)."
	textRefundEmptyBody  = "(empty response, status %d)"
	textRefundCancelled  = "Refund request cancelled."
	textAdminDenied      = "Access denied."
	textAdminMenu        = "Admin actions:"
	textAdminGrantPrompt = "Send the user id to grant refund access to."
	textAdminStatsPrompt = "Send the user id to look up."
	textAdminBadID       = "The user id must be a number. Send the user id."
	textAdminGranted     = "User %d can now submit refunds."
	textAdminNoUser      = "User %d not found."
	textAdminUserStats   = "User %d\nAuthorized: %s\nAccounts: %d\nRefunds: %d"
	textAdminTotals      = "Users: %d\nAccounts: %d\nRefunds: %d"
	textProfile          = "Profile\nId: %d\nUsername: %s\nRefund access: %s\nAccounts: %d\nRefunds: %d"
	textFailure          = "Something went wrong. Please try again."
	textSelected         = "%s\n\n> %s"
)

const (
	labelProfile       = "Profile"
	labelAddAccount    = "Add account"
	labelRefund        = "Refund"
	labelAdmin         = "Admin"
	labelMenu          = "Menu"
	labelYes           = "Yes"
	labelNo            = "No"
	labelWithPhoto     = "With photo"
	labelWithoutPhoto  = "Without photo"
	labelConfirm       = "Confirm"
	labelCancel        = "Cancel"
	labelAdminGrant    = "Grant access"
	labelAdminRefunds  = "User counts"
	labelAdminStats    = "Totals"
	labelReviewToken   = "Token"
	labelReviewOrder   = "Order"
	labelReviewPhoto   = "Photo"
	labelReviewMessage = "Message"
)
