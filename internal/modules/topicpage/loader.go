// Package topicpage assembles the full topic detail view. Loading happens in
// two phases: the topic row first (its ID drives everything else), then the
// dependent queries fan out concurrently and the results are stitched into
// one response.
package topicpage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	attachmentrepository "skripta.hr/forum/internal/modules/attachment/repository"
	bookmarkrepository "skripta.hr/forum/internal/modules/bookmark/repository"
	pollservice "skripta.hr/forum/internal/modules/poll/service"
	reactionrepository "skripta.hr/forum/internal/modules/reaction/repository"
	replyrepository "skripta.hr/forum/internal/modules/reply/repository"
	topicrepository "skripta.hr/forum/internal/modules/topic/repository"
	viewservice "skripta.hr/forum/internal/modules/view/service"
	"skripta.hr/forum/pkg/apperror"
	"skripta.hr/forum/pkg/dto"
)

// TopicPage is the aggregated detail view a single request returns.
type TopicPage struct {
	Topic        dto.TopicResponse       `json:"topic"`
	Replies      []dto.ReplyResponse     `json:"replies"`
	Poll         *pollservice.PollResult `json:"poll,omitempty"`
	IsBookmarked bool                    `json:"is_bookmarked"`
}

type Loader interface {
	// Load returns the topic page for a slug. userID is nil for anonymous
	// visitors; it scopes reaction state, votes and bookmark state.
	Load(ctx context.Context, slug string, userID *uuid.UUID, ipAddress string) (*TopicPage, error)
}

type loader struct {
	topics      topicrepository.TopicRepository
	replies     replyrepository.ReplyRepository
	attachments attachmentrepository.AttachmentRepository
	reactions   reactionrepository.ReactionRepository
	bookmarks   bookmarkrepository.BookmarkRepository
	polls       pollservice.PollService
	views       viewservice.ViewService
}

func NewLoader(
	topics topicrepository.TopicRepository,
	replies replyrepository.ReplyRepository,
	attachments attachmentrepository.AttachmentRepository,
	reactions reactionrepository.ReactionRepository,
	bookmarks bookmarkrepository.BookmarkRepository,
	polls pollservice.PollService,
	views viewservice.ViewService,
) Loader {
	return &loader{
		topics:      topics,
		replies:     replies,
		attachments: attachments,
		reactions:   reactions,
		bookmarks:   bookmarks,
		polls:       polls,
		views:       views,
	}
}

func (l *loader) Load(ctx context.Context, slug string, userID *uuid.UUID, ipAddress string) (*TopicPage, error) {
	// Phase one: the topic row. Everything else keys off its ID.
	topic, err := l.topics.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tema nije pronađena: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	// Replies come first within phase two because attachments and reactions
	// need the reply ID set. Only the topic lookup above is fatal: every
	// dependent query degrades to an empty value so the page still renders.
	replies, err := l.replies.FindByTopicID(ctx, topic.ID)
	if err != nil {
		log.Printf("topicpage: replies for %s unavailable: %v", topic.ID, err)
		replies = nil
	}

	replyIDs := make([]uuid.UUID, 0, len(replies))
	for _, reply := range replies {
		replyIDs = append(replyIDs, reply.ID)
	}

	// Fan out the independent queries.
	var (
		wg           sync.WaitGroup
		attachments  []entity.Attachment
		reactions    []entity.Reaction
		poll         *pollservice.PollResult
		isBookmarked bool
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		rows, err := l.attachments.FindForTopicPage(ctx, topic.ID, replyIDs)
		if err != nil {
			log.Printf("topicpage: attachments for %s unavailable: %v", topic.ID, err)
			return
		}
		attachments = rows
	}()

	go func() {
		defer wg.Done()
		rows, err := l.reactions.FindForTopicPage(ctx, topic.ID, replyIDs)
		if err != nil {
			log.Printf("topicpage: reactions for %s unavailable: %v", topic.ID, err)
			return
		}
		reactions = rows
	}()

	go func() {
		defer wg.Done()
		result, err := l.polls.GetForTopic(ctx, topic.ID, userID)
		if err != nil {
			log.Printf("topicpage: poll for %s unavailable: %v", topic.ID, err)
			return
		}
		poll = result
	}()

	if userID != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bookmarked, err := l.bookmarks.IsBookmarked(ctx, *userID, topic.ID)
			if err != nil {
				log.Printf("topicpage: bookmark state for %s unavailable: %v", topic.ID, err)
				return
			}
			isBookmarked = bookmarked
		}()
	}

	wg.Wait()

	page := assemble(topic, replies, attachments, reactions, userID)
	page.Poll = poll
	page.IsBookmarked = isBookmarked

	// The view is counted after a successful load, off the request path.
	if l.views != nil {
		go func() {
			viewCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			l.views.RecordView(viewCtx, topic.ID, userID, ipAddress)
		}()
	}

	return page, nil
}

// assemble splits the flat attachment and reaction rows by owner and builds
// the response.
func assemble(topic *entity.Topic, replies []entity.Reply, attachments []entity.Attachment, reactions []entity.Reaction, userID *uuid.UUID) *TopicPage {
	topicAttachments := make([]dto.AttachmentResponse, 0)
	replyAttachments := make(map[uuid.UUID][]dto.AttachmentResponse)
	for _, a := range attachments {
		resp := dto.AttachmentResponse{
			ID:       a.ID,
			FileName: a.FileName,
			FileURL:  a.FileURL,
			FileType: a.FileType,
			FileSize: a.FileSize,
		}
		switch {
		case a.ReplyID != nil:
			replyAttachments[*a.ReplyID] = append(replyAttachments[*a.ReplyID], resp)
		case a.TopicID != nil:
			topicAttachments = append(topicAttachments, resp)
		}
	}

	topicReactions := dto.ReactionsResponse{Counts: make(map[string]int64)}
	replyReactions := make(map[uuid.UUID]*dto.ReactionsResponse)
	for _, r := range reactions {
		switch {
		case r.ReplyID != nil:
			target, ok := replyReactions[*r.ReplyID]
			if !ok {
				target = &dto.ReactionsResponse{Counts: make(map[string]int64)}
				replyReactions[*r.ReplyID] = target
			}
			target.Counts[r.Emoji]++
			if userID != nil && r.UserID == *userID {
				emoji := r.Emoji
				target.UserReacted = &emoji
			}
		case r.TopicID != nil:
			topicReactions.Counts[r.Emoji]++
			if userID != nil && r.UserID == *userID {
				emoji := r.Emoji
				topicReactions.UserReacted = &emoji
			}
		}
	}

	tags := make([]dto.TagResponse, 0, len(topic.Tags))
	for _, tag := range topic.Tags {
		tags = append(tags, dto.TagResponse{
			ID:    tag.ID,
			Name:  tag.Name,
			Slug:  tag.Slug,
			Color: tag.Color,
		})
	}

	page := &TopicPage{
		Topic: dto.TopicResponse{
			ID:           topic.ID,
			Title:        topic.Title,
			Slug:         topic.Slug,
			Content:      topic.Content,
			CategoryName: topic.Category.Name,
			CategorySlug: topic.Category.Slug,
			Author:       authorResponse(topic.Author),
			IsPinned:     topic.IsPinned,
			IsLocked:     topic.IsLocked,
			HasSolution:  topic.HasSolution,
			ViewCount:    topic.ViewCount,
			ReplyCount:   topic.ReplyCount,
			Tags:         tags,
			Attachments:  topicAttachments,
			Reactions:    topicReactions,
			CreatedAt:    topic.CreatedAt,
			EditedAt:     topic.EditedAt,
		},
		Replies: make([]dto.ReplyResponse, 0, len(replies)),
	}

	for _, reply := range replies {
		resp := dto.ReplyResponse{
			ID:            reply.ID,
			TopicID:       reply.TopicID,
			ParentReplyID: reply.ParentReplyID,
			Content:       reply.Content,
			Author:        authorResponse(reply.Author),
			IsSolution:    reply.IsSolution,
			Upvotes:       reply.Upvotes,
			Downvotes:     reply.Downvotes,
			Attachments:   replyAttachments[reply.ID],
			CreatedAt:     reply.CreatedAt,
			EditedAt:      reply.EditedAt,
		}
		if reactions, ok := replyReactions[reply.ID]; ok {
			resp.Reactions = *reactions
		} else {
			resp.Reactions = dto.ReactionsResponse{Counts: make(map[string]int64)}
		}
		if resp.Attachments == nil {
			resp.Attachments = make([]dto.AttachmentResponse, 0)
		}
		page.Replies = append(page.Replies, resp)
	}

	return page
}

func authorResponse(user entity.User) dto.AuthorResponse {
	return dto.AuthorResponse{
		ID:         user.ID,
		Username:   user.Username,
		AvatarURL:  user.AvatarURL,
		Reputation: user.Reputation,
	}
}
