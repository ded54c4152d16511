package flows

import "github.com/dmitrijs2005/tokenbot/internal/chat"

func menuKeyboard(authorized, admin bool) chat.Keyboard {
	kb := chat.Keyboard{
		chat.Row(
			chat.Button{Text: labelProfile, Payload: PayloadProfile},
			chat.Button{Text: labelAddAccount, Payload: PayloadAddAccount},
		),
	}
	if authorized {
		kb = append(kb, chat.Row(chat.Button{Text: labelRefund, Payload: PayloadRefund}))
	}
	if admin {
		kb = append(kb, chat.Row(chat.Button{Text: labelAdmin, Payload: PayloadAdmin}))
	}
	return kb
}

func backKeyboard() chat.Keyboard {
	return chat.Keyboard{chat.Row(chat.Button{Text: labelMenu, Payload: PayloadMenu})}
}

func confirmKeyboard() chat.Keyboard {
	return chat.Keyboard{chat.Row(
		chat.Button{Text: labelYes, Payload: PayloadConfirmYes},
		chat.Button{Text: labelNo, Payload: PayloadConfirmNo},
	)}
}

func photoChoiceKeyboard() chat.Keyboard {
	return chat.Keyboard{chat.Row(
		chat.Button{Text: labelWithPhoto, Payload: PayloadWithPhoto},
		chat.Button{Text: labelWithoutPhoto, Payload: PayloadWithoutPhoto},
	)}
}

func refundConfirmKeyboard() chat.Keyboard {
	return chat.Keyboard{chat.Row(
		chat.Button{Text: labelConfirm, Payload: PayloadRefundConfirm},
		chat.Button{Text: labelCancel, Payload: PayloadRefundCancel},
	)}
}

func adminKeyboard() chat.Keyboard {
	return chat.Keyboard{
		chat.Row(
			chat.Button{Text: labelAdminGrant, Payload: PayloadAdminGrant},
			chat.Button{Text: labelAdminRefunds, Payload: PayloadAdminRefunds},
		),
		chat.Row(
			chat.Button{Text: labelAdminStats, Payload: PayloadAdminStats},
			chat.Button{Text: labelMenu, Payload: PayloadMenu},
		),
	}
}
