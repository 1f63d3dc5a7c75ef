package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	achievementService "skripta.hr/forum/internal/modules/achievement/service"
	notificationService "skripta.hr/forum/internal/modules/notification/service"
	replyRepository "skripta.hr/forum/internal/modules/reply/repository"
	searchService "skripta.hr/forum/internal/modules/search/service"
	topicRepository "skripta.hr/forum/internal/modules/topic/repository"
	viewService "skripta.hr/forum/internal/modules/view/service"
	"skripta.hr/forum/internal/outbox"
)

type mentionsPayload struct {
	Content    string    `json:"content"`
	ActorID    uuid.UUID `json:"actor_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	EntitySlug string    `json:"entity_slug"`
	EntityType string    `json:"entity_type"`
}

type achievementPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type viewPayload struct {
	TopicID   uuid.UUID  `json:"topic_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	IPAddress string     `json:"ip_address"`
}

type searchPayload struct {
	TopicID uuid.UUID `json:"topic_id"`
}

type replyNotifyPayload struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	ActorID     uuid.UUID `json:"actor_id"`
	TopicID     uuid.UUID `json:"topic_id"`
	TopicSlug   string    `json:"topic_slug"`
	ReplyID     uuid.UUID `json:"reply_id"`
}

type reactionNotifyPayload struct {
	ActorID uuid.UUID  `json:"actor_id"`
	TopicID *uuid.UUID `json:"topic_id,omitempty"`
	ReplyID *uuid.UUID `json:"reply_id,omitempty"`
	Emoji   string     `json:"emoji"`
}

// outboxHandlers maps event types to their side-effect implementations.
func outboxHandlers(
	notifications notificationService.NotificationService,
	achievements achievementService.AchievementService,
	views viewService.ViewService,
	search searchService.SearchService,
	topicRepo topicRepository.TopicRepository,
	replyRepo replyRepository.ReplyRepository,
) map[string]outbox.Handler {
	return map[string]outbox.Handler{
		outbox.TypeMentions: func(ctx context.Context, e *outbox.Event) error {
			var p mentionsPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid mentions payload: %w", err)
			}
			return notifications.ProcessMentions(ctx, p.Content, p.ActorID, p.EntityID, p.EntitySlug, p.EntityType)
		},

		outbox.TypeAchievementCheck: func(ctx context.Context, e *outbox.Event) error {
			var p achievementPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid achievement payload: %w", err)
			}
			_, err := achievements.CheckAndAward(ctx, p.UserID)
			return err
		},

		outbox.TypeViewRecord: func(ctx context.Context, e *outbox.Event) error {
			var p viewPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid view payload: %w", err)
			}
			return views.PersistViewRecord(ctx, p.TopicID, p.UserID, p.IPAddress)
		},

		outbox.TypeSearchIndex: func(ctx context.Context, e *outbox.Event) error {
			var p searchPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid search payload: %w", err)
			}
			topic, err := topicRepo.FindByID(ctx, p.TopicID)
			if err != nil {
				return err
			}
			return search.IndexTopic(ctx, topic)
		},

		outbox.TypeSearchDelete: func(ctx context.Context, e *outbox.Event) error {
			var p searchPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid search payload: %w", err)
			}
			return search.DeleteTopic(ctx, p.TopicID)
		},

		outbox.TypeReplyNotify: func(ctx context.Context, e *outbox.Event) error {
			var p replyNotifyPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid reply notify payload: %w", err)
			}
			return notifications.Notify(ctx, &entity.Notification{
				UserID:     p.RecipientID,
				ActorID:    p.ActorID,
				EntityID:   p.TopicID,
				EntitySlug: p.TopicSlug,
				EntityType: "topic",
				Type:       entity.NotificationReply,
				Message:    "Netko je odgovorio na vašu temu",
			})
		},

		outbox.TypeSolutionNotify: func(ctx context.Context, e *outbox.Event) error {
			var p replyNotifyPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid solution notify payload: %w", err)
			}
			return notifications.Notify(ctx, &entity.Notification{
				UserID:     p.RecipientID,
				ActorID:    p.ActorID,
				EntityID:   p.ReplyID,
				EntitySlug: p.TopicSlug,
				EntityType: "reply",
				Type:       entity.NotificationSolution,
				Message:    "Vaš odgovor je označen kao rješenje",
			})
		},

		outbox.TypeReactionNotify: func(ctx context.Context, e *outbox.Event) error {
			var p reactionNotifyPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				return fmt.Errorf("invalid reaction notify payload: %w", err)
			}

			// resolve the content owner
			var recipientID, entityID uuid.UUID
			var entitySlug, entityType string
			switch {
			case p.ReplyID != nil:
				reply, err := replyRepo.FindByID(ctx, *p.ReplyID)
				if err != nil {
					return err
				}
				recipientID = reply.AuthorID
				entityID = reply.ID
				entityType = "reply"
			case p.TopicID != nil:
				topic, err := topicRepo.FindByID(ctx, *p.TopicID)
				if err != nil {
					return err
				}
				recipientID = topic.AuthorID
				entityID = topic.ID
				entitySlug = topic.Slug
				entityType = "topic"
			default:
				return fmt.Errorf("reaction notify payload without target")
			}

			if recipientID == p.ActorID {
				return nil
			}

			return notifications.Notify(ctx, &entity.Notification{
				UserID:     recipientID,
				ActorID:    p.ActorID,
				EntityID:   entityID,
				EntitySlug: entitySlug,
				EntityType: entityType,
				Type:       entity.NotificationReaction,
				Message:    fmt.Sprintf("Netko je reagirao %s na vaš sadržaj", p.Emoji),
			})
		},
	}
}
