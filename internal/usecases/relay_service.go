package usecases

import (
	"context"
	"errors"
	"fmt"

	"relaybot/internal/entities"
	"relaybot/internal/infrastructure"
	"relaybot/internal/interfaces"

	"go.uber.org/zap"
)

// Routes an event can take, also used as metric labels
const (
	RouteStart     = "start"
	RouteForward   = "forward"
	RouteOpenReply = "open_reply"
	RouteSendReply = "send_reply"
	RouteIgnored   = "ignored"
)

var ErrUnsupportedContent = errors.New("unsupported content")

// Assets are the images sent to users
type Assets struct {
	WelcomeImage entities.MediaRef
	AckImage     entities.MediaRef
}

// RelayService forwards user messages to the administrator and routes the
// administrator's replies back to the chosen user.
//
// Priority for every message:
//  1. administrator with a pending reply session → send reply
//  2. any other administrator message → dropped
//  3. /start from a user → greeting
//  4. anything else from a user → acknowledge + relay to admin
type RelayService struct {
	gateway  interfaces.Gateway
	sessions interfaces.SessionStore
	adminID  int64
	assets   Assets
	metrics  *infrastructure.Metrics
	log      *zap.Logger
}

// NewRelayService creates the router. metrics and log may be nil.
func NewRelayService(gateway interfaces.Gateway, sessions interfaces.SessionStore, adminID int64, assets Assets, metrics *infrastructure.Metrics, log *zap.Logger) *RelayService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RelayService{
		gateway:  gateway,
		sessions: sessions,
		adminID:  adminID,
		assets:   assets,
		metrics:  metrics,
		log:      log.With(zap.String("component", "relay")),
	}
}

// HandleEvent dispatches one inbound event to exactly one route.
// Failures already reported to the administrator are not returned.
func (s *RelayService) HandleEvent(ctx context.Context, ev entities.Event) error {
	log := s.log.With(zap.Int("update_id", ev.UpdateID))

	switch {
	case ev.Callback != nil:
		return s.handleCallback(ctx, log, *ev.Callback)
	case ev.Message != nil:
		return s.handleMessage(ctx, log, *ev.Message)
	}
	s.metrics.RecordEvent(RouteIgnored)
	return nil
}

func (s *RelayService) handleMessage(ctx context.Context, log *zap.Logger, msg entities.IncomingMessage) error {
	log = log.With(zap.Int64("from", msg.From.ID), zap.String("content", entities.ContentKind(msg.Content)))

	if msg.From.ID == s.adminID {
		if msg.Command == startCommand {
			s.metrics.RecordEvent(RouteIgnored)
			return nil
		}
		target, ok := s.sessions.Get(s.adminID)
		if !ok {
			log.Debug("admin message without pending reply session, dropped")
			s.metrics.RecordEvent(RouteIgnored)
			return nil
		}
		s.metrics.RecordEvent(RouteSendReply)
		return s.sendReply(ctx, log, msg, target)
	}

	if msg.Command == startCommand {
		s.metrics.RecordEvent(RouteStart)
		return s.greet(ctx, msg)
	}

	s.metrics.RecordEvent(RouteForward)
	return s.forwardToAdmin(ctx, log, msg)
}

func (s *RelayService) greet(ctx context.Context, msg entities.IncomingMessage) error {
	err := s.gateway.SendPhoto(ctx, msg.ChatID, s.assets.WelcomeImage, WelcomeCaption, interfaces.SendOptions{})
	s.metrics.RecordSend("photo", err)
	if err != nil {
		infrastructure.CaptureError(ctx, err)
		return fmt.Errorf("send welcome to %d: %w", msg.From.ID, err)
	}
	return nil
}

// forwardToAdmin acknowledges the user and relays the message to the admin.
// A failed acknowledgment does not prevent the relay.
func (s *RelayService) forwardToAdmin(ctx context.Context, log *zap.Logger, msg entities.IncomingMessage) error {
	var errs []error

	ackErr := s.gateway.SendPhoto(ctx, msg.ChatID, s.assets.AckImage, AckCaption, interfaces.SendOptions{})
	s.metrics.RecordSend("photo", ackErr)
	if ackErr != nil {
		errs = append(errs, fmt.Errorf("acknowledge %d: %w", msg.From.ID, ackErr))
	}

	relayed := withRelayHeader(RelayHeader(msg.From), msg.Content)
	opts := interfaces.SendOptions{ReplyAction: &entities.ReplyAction{UserID: msg.From.ID}}
	if err := s.deliver(ctx, s.adminID, relayed, opts); err != nil {
		errs = append(errs, fmt.Errorf("relay %d to admin: %w", msg.From.ID, err))
	} else {
		log.Info("message relayed to admin")
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		infrastructure.CaptureError(ctx, err)
		return err
	}
	return nil
}

// withRelayHeader prefixes the header to the text or caption. Unsupported
// content becomes a text carrying an explicit marker.
func withRelayHeader(header string, content entities.Content) entities.Content {
	switch c := content.(type) {
	case entities.Text:
		return entities.Text{Body: withHeader(header, c.Body)}
	case entities.Photo:
		return entities.Photo{File: c.File, Caption: withHeader(header, c.Caption)}
	case entities.Video:
		return entities.Video{File: c.File, Caption: withHeader(header, c.Caption)}
	default:
		return entities.Text{Body: withHeader(header, UnsupportedMarker)}
	}
}

func (s *RelayService) handleCallback(ctx context.Context, log *zap.Logger, cb entities.CallbackQuery) (err error) {
	log = log.With(zap.Int64("from", cb.From.ID))

	// the pressed button shows a spinner until answered, whatever happens below
	defer func() {
		if ansErr := s.gateway.AnswerCallback(ctx, cb.ID); ansErr != nil {
			err = errors.Join(err, fmt.Errorf("answer callback: %w", ansErr))
		}
	}()

	if cb.From.ID != s.adminID {
		log.Warn("callback from non-admin ignored")
		s.metrics.RecordEvent(RouteIgnored)
		return nil
	}

	action, parseErr := entities.ParseReplyAction(cb.Data)
	if parseErr != nil {
		log.Warn("unknown callback data", zap.String("data", cb.Data), zap.Error(parseErr))
		s.metrics.RecordEvent(RouteIgnored)
		return nil
	}

	s.metrics.RecordEvent(RouteOpenReply)
	if previous, ok := s.sessions.Get(s.adminID); ok && previous != action.UserID {
		log.Info("replacing pending reply session", zap.Int64("previous_target", previous))
	}
	s.sessions.Set(s.adminID, action.UserID)
	log.Info("reply session opened", zap.Int64("target", action.UserID))

	promptErr := s.gateway.SendText(ctx, cb.ChatID, ReplyPrompt(action.UserID), interfaces.SendOptions{})
	s.metrics.RecordSend("text", promptErr)
	if promptErr != nil {
		return fmt.Errorf("send reply prompt: %w", promptErr)
	}
	return nil
}

// sendReply delivers the admin's message to target. The session is cleared
// only after a successful delivery so the admin can retry by resending.
func (s *RelayService) sendReply(ctx context.Context, log *zap.Logger, msg entities.IncomingMessage, target int64) error {
	log = log.With(zap.Int64("target", target))

	err := s.deliver(ctx, target, msg.Content, interfaces.SendOptions{})
	switch {
	case errors.Is(err, ErrUnsupportedContent):
		log.Info("unsupported reply content rejected")
		return s.notifyAdmin(ctx, msg, UnsupportedNotice)

	case err != nil:
		log.Warn("reply delivery failed", zap.Error(err))
		infrastructure.CaptureError(ctx, err)
		return s.notifyAdmin(ctx, msg, ReplyFailure(err))
	}

	s.sessions.Clear(s.adminID)
	log.Info("reply delivered")
	return s.notifyAdmin(ctx, msg, ReplySentNotice)
}

// notifyAdmin answers the admin's message with a quoted text
func (s *RelayService) notifyAdmin(ctx context.Context, msg entities.IncomingMessage, text string) error {
	err := s.gateway.SendText(ctx, msg.ChatID, text, interfaces.SendOptions{ReplyToMessageID: msg.MessageID})
	s.metrics.RecordSend("text", err)
	if err != nil {
		return fmt.Errorf("notify admin: %w", err)
	}
	return nil
}

// deliver sends content to chatID choosing the call by content variant
func (s *RelayService) deliver(ctx context.Context, chatID int64, content entities.Content, opts interfaces.SendOptions) error {
	var err error
	switch c := content.(type) {
	case entities.Text:
		err = s.gateway.SendText(ctx, chatID, c.Body, opts)
	case entities.Photo:
		err = s.gateway.SendPhoto(ctx, chatID, c.File, c.Caption, opts)
	case entities.Video:
		err = s.gateway.SendVideo(ctx, chatID, c.File, c.Caption, opts)
	default:
		return ErrUnsupportedContent
	}
	s.metrics.RecordSend(entities.ContentKind(content), err)
	return err
}
