package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

type FCMService struct {
	client *messaging.Client
}

func NewFCMService(ctx context.Context, app *firebase.App) (*FCMService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return &FCMService{client: client}, nil
}

// Send delivers p to each token individually. It fails only when every
// token failed.
func (s *FCMService) Send(ctx context.Context, p Push) (Result, error) {
	var res Result
	if len(p.Tokens) == 0 {
		return res, nil
	}

	data := make(map[string]string, len(p.Data)+1)
	for k, v := range p.Data {
		data[k] = v
	}
	data["type"] = string(p.Type)

	for _, token := range p.Tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: p.Title,
				Body:  p.Body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
		}

		if _, err := s.client.Send(ctx, message); err != nil {
			res.Failed++
			if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
				res.InvalidTokens = append(res.InvalidTokens, token)
			}
			zap.L().Warn("fcm: send failed", zap.String("user_id", p.UserID), zap.Error(err))
			continue
		}
		res.Sent++
	}

	zap.L().Debug("fcm: batch done",
		zap.String("user_id", p.UserID),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed))

	if res.Sent == 0 && res.Failed > 0 {
		return res, fmt.Errorf("all %d push notifications failed", res.Failed)
	}
	return res, nil
}
