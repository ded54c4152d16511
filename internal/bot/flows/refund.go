package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tokenbot/internal/bot/services"
	"github.com/dmitrijs2005/tokenbot/internal/bot/storage"
	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/conversation"
)

const (
	hasPhotoYes = "yes"
	hasPhotoNo  = "no"
)

func (h *Handlers) registerRefund(e *conversation.Engine) {
	e.Route(chat.KindButton, PayloadRefund, conversation.FlowNone, "", h.refundEnter)
	e.Route(chat.KindCommand, CommandRefund, conversation.FlowNone, "", h.refundEnter)

	e.Handle(FlowRefund, StepAwaitingToken, chat.KindText, h.refundToken)
	e.Handle(FlowRefund, StepAwaitingOrderID, chat.KindText, h.refundOrderID)
	e.Handle(FlowRefund, StepAwaitingPhotoChoice, chat.KindButton, h.refundPhotoChoice)
	e.Handle(FlowRefund, StepAwaitingPhoto, chat.KindPhoto, h.refundPhoto)
	e.Handle(FlowRefund, StepAwaitingPhoto, chat.KindText, h.refundPhotoMissing)
	e.Handle(FlowRefund, StepAwaitingPhoto, chat.KindButton, h.refundPhotoMissing)
	e.Handle(FlowRefund, StepAwaitingPhoto, chat.KindAttachment, h.refundPhotoMissing)
	e.Handle(FlowRefund, StepAwaitingText, chat.KindText, h.refundMessage)
	e.Handle(FlowRefund, StepAwaitingConfirmation, chat.KindButton, h.refundConfirm)
}

// refundEnter opens the refund flow for authorized users. Everyone else is
// turned away without a session.
func (h *Handlers) refundEnter(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	u, err := h.touch(ctx, ev)
	if err != nil {
		return conversation.Done(), err
	}
	if !u.Authorized {
		return conversation.Done(), h.send(ctx, ev.ChatID, textRefundDenied, backKeyboard())
	}
	h.enter(ev, FlowRefund, StepAwaitingToken)
	return conversation.Done(), h.send(ctx, ev.ChatID, textEnterToken, nil)
}

func (h *Handlers) refundToken(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	token := strings.TrimSpace(ev.Payload)
	if token == "" {
		return conversation.Stay(), h.send(ctx, ev.ChatID, textEmptyToken, nil)
	}
	s.Set(fieldToken, token)
	return conversation.Next(StepAwaitingOrderID), h.send(ctx, ev.ChatID, textEnterOrderID, nil)
}

func (h *Handlers) refundOrderID(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	orderID := strings.TrimSpace(ev.Payload)
	if orderID == "" {
		return conversation.Stay(), h.send(ctx, ev.ChatID, textEmptyOrderID, nil)
	}
	s.Set(fieldOrderID, orderID)
	return conversation.Next(StepAwaitingPhotoChoice), h.send(ctx, ev.ChatID, textPhotoChoice, photoChoiceKeyboard())
}

func (h *Handlers) refundPhotoChoice(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	switch ev.Payload {
	case PayloadWithPhoto:
		h.ack(ctx, ev, textPhotoChoice, labelWithPhoto)
		s.Set(fieldHasPhoto, hasPhotoYes)
		return conversation.Next(StepAwaitingPhoto), h.send(ctx, ev.ChatID, textSendPhoto, nil)
	case PayloadWithoutPhoto:
		h.ack(ctx, ev, textPhotoChoice, labelWithoutPhoto)
		s.Set(fieldHasPhoto, hasPhotoNo)
		return conversation.Next(StepAwaitingText), h.send(ctx, ev.ChatID, textEnterMessage, nil)
	default:
		return conversation.Stay(), h.send(ctx, ev.ChatID, textPhotoChoice, photoChoiceKeyboard())
	}
}

// refundPhoto downloads the attachment under a name derived from the user id
// and the current time.
func (h *Handlers) refundPhoto(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	if ev.FileID == "" {
		return conversation.Stay(), h.send(ctx, ev.ChatID, textPhotoRequired, nil)
	}

	name := storage.PhotoFilename(ev.UserID, h.now())
	if err := h.msg.DownloadFile(ctx, ev.FileID, h.photos.Path(name)); err != nil {
		h.logger.Warn(ctx, "photo download failed", "user_id", ev.UserID, "error", err)
		return conversation.Stay(), h.send(ctx, ev.ChatID, textPhotoFailed, nil)
	}

	// A second photo replaces the first one.
	if prev := s.Value(fieldPhoto); prev != "" && prev != name {
		_ = h.photos.Remove(prev)
	}
	s.Set(fieldPhoto, name)
	return conversation.Next(StepAwaitingText), h.send(ctx, ev.ChatID, textEnterMessage, nil)
}

func (h *Handlers) refundPhotoMissing(ctx context.Context, _ *conversation.Session, ev chat.Event) (conversation.Result, error) {
	return conversation.Stay(), h.send(ctx, ev.ChatID, textPhotoRequired, nil)
}

func (h *Handlers) refundMessage(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	message := strings.TrimSpace(ev.Payload)
	if message == "" {
		return conversation.Stay(), h.send(ctx, ev.ChatID, textEmptyMessage, nil)
	}
	s.Set(fieldMessage, message)
	return conversation.Next(StepAwaitingConfirmation), h.send(ctx, ev.ChatID, reviewText(s), refundConfirmKeyboard())
}

func (h *Handlers) refundConfirm(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	switch ev.Payload {
	case PayloadRefundConfirm:
		h.ack(ctx, ev, reviewText(s), labelConfirm)
		return h.submitRefund(ctx, s, ev)
	case PayloadRefundCancel:
		h.ack(ctx, ev, reviewText(s), labelCancel)
		h.cleanup(ctx, s)
		if err := h.send(ctx, ev.ChatID, textRefundCancelled, nil); err != nil {
			return conversation.Done(), err
		}
		return h.finish(ctx, ev)
	default:
		return conversation.Stay(), h.send(ctx, ev.ChatID, reviewText(s), refundConfirmKeyboard())
	}
}

func (h *Handlers) submitRefund(ctx context.Context, s *conversation.Session, ev chat.Event) (conversation.Result, error) {
	r := services.Refund{
		UserID:     ev.UserID,
		Credential: s.Value(fieldToken),
		OrderID:    s.Value(fieldOrderID),
		HasPhoto:   s.Value(fieldHasPhoto) == hasPhotoYes,
		Message:    s.Value(fieldMessage),
	}
	if name := s.Value(fieldPhoto); name != "" {
		r.PhotoFilename = name
		r.PhotoPath = h.photos.Path(name)
	}

	rec, err := h.refunds.Submit(ctx, r)
	if err != nil {
		return conversation.Done(), err
	}

	if err := h.send(ctx, ev.ChatID, fmt.Sprintf(textRefundSent, rec.RequestID), nil); err != nil {
		return conversation.Done(), err
	}
	body := rec.RawBody
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf(textRefundEmptyBody, rec.StatusCode)
	}
	if err := h.send(ctx, ev.ChatID, body, nil); err != nil {
		return conversation.Done(), err
	}
	return h.finish(ctx, ev)
}

// reviewText renders the collected buffer as entered.
func reviewText(s *conversation.Session) string {
	photo := s.Value(fieldPhoto)
	if photo == "" {
		photo = hasPhotoNo
	}

	var b strings.Builder
	b.WriteString(textReview)
	fmt.Fprintf(&b, "\n%s: %s", labelReviewToken, s.Value(fieldToken))
	fmt.Fprintf(&b, "\n%s: %s", labelReviewOrder, s.Value(fieldOrderID))
	fmt.Fprintf(&b, "\n%s: %s", labelReviewPhoto, photo)
	fmt.Fprintf(&b, "\n%s: %s", labelReviewMessage, s.Value(fieldMessage))
	return b.String()
}
