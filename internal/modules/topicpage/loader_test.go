package topicpage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
)

func TestAssembleSplitsAttachmentsAndReactions(t *testing.T) {
	viewerID := uuid.New()
	topic := &entity.Topic{
		ID:      uuid.New(),
		Title:   "Priprema za kolokvij",
		Slug:    "priprema-za-kolokvij",
		Content: "Kako se pripremate?",
		Author:  entity.User{ID: uuid.New(), Username: "ana"},
		Category: entity.Category{
			Name: "Ispiti i kolokviji",
			Slug: "ispiti-i-kolokviji",
		},
		Tags: []entity.Tag{{ID: uuid.New(), Name: "matematika", Slug: "matematika"}},
	}

	solution := entity.Reply{
		ID:         uuid.New(),
		TopicID:    topic.ID,
		Content:    "Evo rješenja",
		Author:     entity.User{ID: uuid.New(), Username: "marko"},
		IsSolution: true,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	later := entity.Reply{
		ID:        uuid.New(),
		TopicID:   topic.ID,
		Content:   "Hvala!",
		Author:    entity.User{ID: viewerID, Username: "ivana"},
		CreatedAt: time.Now(),
	}
	replies := []entity.Reply{solution, later}

	attachments := []entity.Attachment{
		{ID: uuid.New(), FileName: "skripta.pdf", TopicID: &topic.ID},
		{ID: uuid.New(), FileName: "rjesenje.png", ReplyID: &solution.ID},
	}

	reactions := []entity.Reaction{
		{UserID: uuid.New(), TopicID: &topic.ID, Emoji: "👍"},
		{UserID: viewerID, TopicID: &topic.ID, Emoji: "👍"},
		{UserID: uuid.New(), ReplyID: &solution.ID, Emoji: "🎉"},
	}

	page := assemble(topic, replies, attachments, reactions, &viewerID)

	if len(page.Topic.Attachments) != 1 || page.Topic.Attachments[0].FileName != "skripta.pdf" {
		t.Fatalf("topic attachments wrong: %+v", page.Topic.Attachments)
	}

	if page.Topic.Reactions.Counts["👍"] != 2 {
		t.Fatalf("topic reaction count wrong: %v", page.Topic.Reactions.Counts)
	}
	if page.Topic.Reactions.UserReacted == nil || *page.Topic.Reactions.UserReacted != "👍" {
		t.Fatalf("viewer's own topic reaction not marked: %v", page.Topic.Reactions.UserReacted)
	}

	if len(page.Replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(page.Replies))
	}

	first := page.Replies[0]
	if first.ID != solution.ID || !first.IsSolution {
		t.Fatalf("reply order from the repository was not preserved: %+v", first)
	}
	if len(first.Attachments) != 1 || first.Attachments[0].FileName != "rjesenje.png" {
		t.Fatalf("reply attachments wrong: %+v", first.Attachments)
	}
	if first.Reactions.Counts["🎉"] != 1 {
		t.Fatalf("reply reaction count wrong: %v", first.Reactions.Counts)
	}
	if first.Reactions.UserReacted != nil {
		t.Fatalf("viewer did not react to the solution reply: %v", first.Reactions.UserReacted)
	}

	second := page.Replies[1]
	if second.Attachments == nil || len(second.Attachments) != 0 {
		t.Fatalf("reply without attachments must get an empty slice: %+v", second.Attachments)
	}
	if second.Reactions.Counts == nil || len(second.Reactions.Counts) != 0 {
		t.Fatalf("reply without reactions must get an empty counts map: %+v", second.Reactions)
	}

	if len(page.Topic.Tags) != 1 || page.Topic.Tags[0].Slug != "matematika" {
		t.Fatalf("tags not mapped: %+v", page.Topic.Tags)
	}
}

func TestAssembleAnonymousViewer(t *testing.T) {
	topic := &entity.Topic{
		ID:     uuid.New(),
		Author: entity.User{ID: uuid.New(), Username: "ana"},
	}
	reactions := []entity.Reaction{
		{UserID: uuid.New(), TopicID: &topic.ID, Emoji: "❤️"},
	}

	page := assemble(topic, nil, nil, reactions, nil)

	if page.Topic.Reactions.Counts["❤️"] != 1 {
		t.Fatalf("reaction count wrong: %v", page.Topic.Reactions.Counts)
	}
	if page.Topic.Reactions.UserReacted != nil {
		t.Fatalf("anonymous viewer cannot have a reaction: %v", page.Topic.Reactions.UserReacted)
	}
	if page.Replies == nil || len(page.Replies) != 0 {
		t.Fatalf("expected empty reply list, got %+v", page.Replies)
	}
}
